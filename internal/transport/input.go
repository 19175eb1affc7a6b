package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"pos-catalog/internal/middleware"
	"pos-catalog/internal/validation"
)

// parseProductInput reads the product fields from a JSON or form-encoded body.
// Unknown fields are dropped and a JSON null is kept as a blank submission.
func parseProductInput(r *http.Request) (validation.Input, error) {
	input := validation.Input{}

	if middleware.IsJSON(r) {
		var body map[string]interface{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		for _, field := range validation.ProductFields {
			value, ok := body[field]
			if !ok {
				continue
			}
			input[field] = jsonValueString(value)
		}
		return input, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	for _, field := range validation.ProductFields {
		if _, ok := r.PostForm[field]; ok {
			input[field] = r.PostForm.Get(field)
		}
	}
	return input, nil
}

func jsonValueString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		// The literal as sent, so 0.10 or 1e400 is not rounded through float64
		return v.String()
	default:
		// Arrays and objects fail field validation as invalid values
		raw, _ := json.Marshal(v)
		return string(raw)
	}
}
