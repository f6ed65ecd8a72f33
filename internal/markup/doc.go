// Package markup loads existing markup for hydration and turns parsed
// markup into element trees.
//
// Sources are local paths, http(s) URLs or s3://bucket/key objects:
//
//	l := markup.NewLoader()
//	data, err := l.Load(ctx, "s3://site/index.html")
package markup
