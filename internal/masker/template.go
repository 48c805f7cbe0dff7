package masker

import (
	"regexp"
	"strings"
)

// TemplateSpec is the wire form of a template rule. Fields are pointers so a
// missing key can be told apart from an empty value.
type TemplateSpec struct {
	Template *string `json:"template" yaml:"template"`
	Mask     *string `json:"mask" yaml:"mask"`
}

// Spec builds a TemplateSpec from plain strings.
func Spec(template, mask string) TemplateSpec {
	return TemplateSpec{Template: &template, Mask: &mask}
}

// Template is a compiled regex rule whose matches are replaced by a
// placeholder built from Label.
type Template struct {
	Pattern string
	Label   string
	re      *regexp.Regexp
}

// NewTemplate compiles pattern and normalizes mask into a label: trimmed,
// lower-cased and stripped of one wrapping delimiter on each side. Labels
// must be non-empty and contain no whitespace.
func NewTemplate(pattern, mask string) (Template, *Error) {
	pattern = strings.TrimSpace(pattern)
	label := NormalizeLabel(mask)
	if label == "" {
		return Template{}, PatternError(&pattern, &label, `"mask" was empty.`)
	}
	if strings.ContainsAny(label, " \t\r\n"+MaskDelimiter) {
		return Template{}, PatternError(&pattern, &label, `"mask" must not contain whitespace or "~".`)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Template{}, PatternError(&pattern, &label, err.Error())
	}
	return Template{Pattern: pattern, Label: label, re: re}, nil
}

// NormalizeLabel trims and lower-cases mask and removes one leading and one
// trailing delimiter.
func NormalizeLabel(mask string) string {
	label := strings.ToLower(strings.TrimSpace(mask))
	label = strings.TrimPrefix(label, MaskDelimiter)
	label = strings.TrimSuffix(label, MaskDelimiter)
	return label
}

// Placeholder returns the replacement text for matches of t.
func (t Template) Placeholder() string {
	return Placeholder(t.Label)
}

// Spec returns the wire form of t.
func (t Template) Spec() TemplateSpec {
	return Spec(t.Pattern, t.Label)
}

// Apply replaces every match of t in text with its placeholder.
func (t Template) Apply(text string) string {
	if t.re == nil {
		return text
	}
	return t.re.ReplaceAllLiteralString(text, t.Placeholder())
}

// CompileTemplates compiles specs in order. Invalid specs are reported and
// skipped; the remaining templates keep their relative order.
func CompileTemplates(specs []TemplateSpec) ([]Template, []*Error) {
	var (
		templates []Template
		errs      []*Error
	)
	for _, s := range specs {
		switch {
		case s.Template == nil:
			errs = append(errs, PatternError(nil, s.Mask, `"template" was missing or null.`))
			continue
		case s.Mask == nil:
			errs = append(errs, PatternError(s.Template, nil, `"mask" was missing or null.`))
			continue
		}
		t, err := NewTemplate(*s.Template, *s.Mask)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		templates = append(templates, t)
	}
	return templates, errs
}

// ApplyTemplates runs each template once, in order, over the text produced by
// the previous one. Order matters: more specific patterns must come first.
func ApplyTemplates(text string, templates []Template) string {
	for _, t := range templates {
		text = t.Apply(text)
	}
	return text
}

// Labels returns the set of labels used by templates.
func Labels(templates []Template) map[string]struct{} {
	labels := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		labels[t.Label] = struct{}{}
	}
	return labels
}

// UpdateTemplates applies removals and then updates to current and returns
// the new list. A removal matches a template by its exact pattern source.
// Every update whose pattern compiles also removes an existing template with
// the same pattern, so updating a pattern replaces it instead of duplicating
// it. current is not modified.
func UpdateTemplates(current []Template, updates []TemplateSpec, removals []string) (next []Template, updated, removed []TemplateSpec, errs []*Error) {
	drop := make(map[string]struct{}, len(removals)+len(updates))
	for _, r := range removals {
		drop[strings.TrimSpace(r)] = struct{}{}
	}
	for _, u := range updates {
		if u.Template == nil {
			continue
		}
		p := strings.TrimSpace(*u.Template)
		if _, err := regexp.Compile(p); err == nil {
			drop[p] = struct{}{}
		}
	}

	next = make([]Template, 0, len(current)+len(updates))
	for _, t := range current {
		if _, ok := drop[t.Pattern]; ok {
			removed = append(removed, t.Spec())
			continue
		}
		next = append(next, t)
	}

	added, errs := CompileTemplates(updates)
	for _, t := range added {
		next = append(next, t)
		updated = append(updated, t.Spec())
	}
	return next, updated, removed, errs
}
