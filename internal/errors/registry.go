package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Runtime contract violations (E001-E009)
	// ============================================

	"E001": {
		Category:   CategoryRuntime,
		Message:    "No pending mutation to apply",
		Suggestion: "Signal mutations are applied by the scheduler only after Set or Edit queued them.",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Child group index out of range",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Child group slot already occupied",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Document mutation failed",
	},
	"E005": {
		Category:   CategoryRuntime,
		Message:    "Flush round limit exceeded",
		Suggestion: "An effect or update keeps queueing new updates. Check for signals set from their own dependents.",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Element used after teardown",
	},

	// ============================================
	// Environment errors (E010-E019)
	// ============================================

	"E010": {
		Category:   CategoryEnvironment,
		Message:    "Mount anchor not found",
		Suggestion: "Make sure the document contains an element with this id before mounting.",
	},
	"E011": {
		Category: CategoryEnvironment,
		Message:  "Runtime is not running",
	},
	"E012": {
		Category: CategoryEnvironment,
		Message:  "Markup source unavailable",
	},

	// ============================================
	// Configuration errors (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"E021": {
		Category:   CategoryConfig,
		Message:    "Unsupported configuration format",
		Suggestion: "Use a .json, .yaml or .yml file.",
	},
	"E022": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create ripple.json or ripple.yaml at the project root.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
