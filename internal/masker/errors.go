package masker

import "fmt"

// ErrorCode classifies a request-level error reported in an errors list.
type ErrorCode string

const (
	// CodeConfiguration: unknown tenant or missing resource set. Short-circuits
	// the whole call to an empty result.
	CodeConfiguration ErrorCode = "configuration_error"
	// CodePattern: a template that does not compile or has an empty label.
	// Only that template is skipped.
	CodePattern ErrorCode = "pattern_error"
	// CodeReconciliation: a masked value could not be mapped back to its
	// original. Only that diff entry is skipped.
	CodeReconciliation ErrorCode = "reconciliation_error"
	// CodeInvariant: an internal consistency check failed.
	CodeInvariant ErrorCode = "invariant_violation"
)

// Error is a structured entry of an errors list.
type Error struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"error"`
	Template *string   `json:"template,omitempty"`
	Mask     *string   `json:"mask,omitempty"`
}

func (e *Error) Error() string {
	if e.Template != nil {
		return fmt.Sprintf("%s: %s (template %q)", e.Code, e.Message, *e.Template)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ConfigurationError builds a CodeConfiguration error.
func ConfigurationError(format string, args ...any) *Error {
	return &Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// PatternError builds a CodePattern error for one template.
func PatternError(template, mask *string, message string) *Error {
	return &Error{Code: CodePattern, Message: message, Template: template, Mask: mask}
}
