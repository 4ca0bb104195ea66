package genservice

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// keywordSelectionSchema pins the shape of a keyword-selection response so a
// half-broken backend cannot slip malformed picks into the pipeline.
const keywordSelectionSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["selected"],
	"properties": {
		"selected": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["keyword_id", "keyword_phrase"],
				"properties": {
					"keyword_id": {"type": "string", "minLength": 1},
					"keyword_phrase": {"type": "string", "minLength": 1},
					"score": {"type": "number"}
				}
			}
		}
	}
}`

// validateKeywordSelection checks a raw keyword-selection payload against
// the schema before it is unmarshaled.
func validateKeywordSelection(raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(keywordSelectionSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("validating keyword selection: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("keyword selection rejected: %s: %s", first.Field(), first.Description())
	}
	return nil
}
