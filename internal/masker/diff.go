package masker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaskedToken pairs a placeholder with the original text it replaced. It is
// encoded as a single-key object, {"~name~": "Alice"}.
type MaskedToken struct {
	Placeholder string
	Original    string
}

func (t MaskedToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{t.Placeholder: t.Original})
}

func (t *MaskedToken) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("masked token: want one key, got %d", len(m))
	}
	for k, v := range m {
		t.Placeholder, t.Original = k, v
	}
	return nil
}

// Diff walks masked and unmasked in step and returns one MaskedToken per
// placeholder in masked, in order. Both inputs must still carry
// TildeSubstitute for literal tildes; originals are returned with tildes
// restored.
//
// The original of a placeholder is the unmasked text up to where the literal
// text following the placeholder reappears. When that text cannot be found,
// which happens when overlapping templates leave adjacent placeholders, the
// placeholder is skipped and reported as a reconciliation error.
func Diff(unmasked, masked string) ([]MaskedToken, []*Error) {
	var (
		tokens []MaskedToken
		errs   []*Error
	)
	offset := strings.Index(masked, MaskDelimiter)
	for offset != -1 {
		if offset > len(unmasked) {
			errs = append(errs, &Error{Code: CodeReconciliation, Message: "masked text runs past the unmasked text"})
			break
		}
		unmasked = unmasked[offset:]
		end := strings.Index(masked[offset+1:], MaskDelimiter)
		if end == -1 {
			break
		}
		placeholder := masked[offset : offset+end+2]
		masked = masked[offset+end+2:]

		between := masked
		next := strings.Index(masked, MaskDelimiter)
		if next == -1 {
			// last placeholder takes the remainder up to the trailing text
			original := unmasked
			if between != "" {
				if i := strings.Index(unmasked, between); i != -1 {
					original = unmasked[:i]
				}
			}
			tokens = append(tokens, MaskedToken{Placeholder: placeholder, Original: RestoreTildes(original)})
			break
		}

		between = masked[:next]
		i := strings.Index(unmasked, between)
		if i == -1 {
			errs = append(errs, reconciliationError(placeholder, between))
		} else {
			tokens = append(tokens, MaskedToken{Placeholder: placeholder, Original: RestoreTildes(unmasked[:i])})
			unmasked = unmasked[i:]
		}
		offset = next
	}
	return tokens, errs
}

func reconciliationError(placeholder, between string) *Error {
	return &Error{
		Code:    CodeReconciliation,
		Message: fmt.Sprintf("no match for %q after %s in the unmasked text", between, placeholder),
	}
}
