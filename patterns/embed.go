// Package patterns provides the embedded default template document written
// into new tenant directories.
package patterns

import _ "embed"

//go:embed templates.yaml
var templatesYAML []byte

// TemplatesYAML returns the embedded default template document.
func TemplatesYAML() []byte { return templatesYAML }
