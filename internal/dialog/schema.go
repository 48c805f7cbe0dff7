package dialog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// fileSchema describes a dialog file. Every dialog needs a dialogHeader with
// a sessionID; dialogs without dialogContent are allowed and skipped.
const fileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Dialog file",
  "type": "object",
  "required": ["dialogs"],
  "additionalProperties": true,
  "properties": {
    "header": {"type": "object"},
    "dialogs": {
      "type": "array",
      "items": {
        "type": "object",
        "dependencies": {"dialogContent": ["dialogHeader"]},
        "properties": {
          "dialogHeader": {
            "type": "object",
            "required": ["sessionID"],
            "properties": {
              "sessionID": {"type": "string"},
              "conversationDateTime": {"type": "string"}
            }
          },
          "dialogContent": {
            "type": "object",
            "properties": {
              "dialog": {
                "type": "array",
                "items": {
                  "type": "object",
                  "properties": {
                    "agent": {"type": "string"},
                    "datetime": {"type": "string"},
                    "message": {"type": ["string", "null"]},
                    "turn": {"type": "integer"},
                    "skill": {"type": "string"}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var fileSchemaLoader = gojsonschema.NewStringLoader(fileSchema)

// ValidateFile checks a dialog file document against the dialog file schema.
func ValidateFile(data []byte) error {
	result, err := gojsonschema.Validate(fileSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if !result.Valid() {
		var b strings.Builder
		for _, verr := range result.Errors() {
			fmt.Fprintf(&b, "\n- %s", verr)
		}
		return fmt.Errorf("%w:%s", ErrInvalidFile, b.String())
	}
	return nil
}
