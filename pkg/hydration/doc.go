// Package hydration attaches a generated element tree to markup that is
// already in the document, such as server rendered HTML.
//
// The generated tree and the existing subtree are walked in lock step.
// Matching nodes are reused and the generated handles are rebound to
// them, so event listeners and later updates act on the existing nodes.
// Anything that does not match is discarded and replaced by the generated
// node. Hydration never fails; Stats reports how far the existing markup
// was from the generated tree.
package hydration
