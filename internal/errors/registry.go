package errors

// Registered error codes.
const (
	CodeCycleDetected   = "R001"
	CodeDuplicateKey    = "R002"
	CodeContextNotFound = "R003"
	CodeRuleFailure     = "R004"
	CodeScopeDisposed   = "R005"
	CodeConfigInvalid   = "C001"
	CodeConfigParse     = "C002"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Engine Errors (R001-R099)
	// ============================================

	CodeCycleDetected: {
		Category:   CategoryStructural,
		Message:    "Cycle detected",
		Suggestion: "A computation invalidated itself, directly or through other effects. Break the loop or guard the write.",
		DocURL:     "https://vango.dev/docs/errors/R001",
	},
	CodeDuplicateKey: {
		Category:   CategoryStructural,
		Message:    "Duplicate list key",
		Suggestion: "Keys must be unique within one list and stable across renders.",
		DocURL:     "https://vango.dev/docs/errors/R002",
	},
	CodeContextNotFound: {
		Category:   CategoryLookup,
		Message:    "Context not found",
		Suggestion: "Provide the context on an ancestor scope before using it.",
		DocURL:     "https://vango.dev/docs/errors/R003",
	},
	CodeRuleFailure: {
		Category: CategoryRule,
		Message:  "Computation failed",
		DocURL:   "https://vango.dev/docs/errors/R004",
	},
	CodeScopeDisposed: {
		Category: CategoryLookup,
		Message:  "Scope disposed",
		DocURL:   "https://vango.dev/docs/errors/R005",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		DocURL:   "https://vango.dev/docs/errors/C001",
	},
	CodeConfigParse: {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be parsed",
		Suggestion: "Check the file for syntax errors.",
		DocURL:     "https://vango.dev/docs/errors/C002",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
