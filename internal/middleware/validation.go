package middleware

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their wire names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes a JSON or form-encoded request body and validates it.
// Form fields are matched to the struct's json names.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if IsJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return err
		}
		return ValidateRequest(v)
	}

	if err := r.ParseForm(); err != nil {
		return err
	}

	fields := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		fields[key] = r.PostForm.Get(key)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return err
	}

	return ValidateRequest(v)
}

// IsJSON reports whether the request body is JSON
func IsJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errors
}

// FieldErrors groups validator errors by field, the shape page payloads carry
func FieldErrors(err error) map[string][]string {
	fields := make(map[string][]string)
	for _, e := range FormatValidationErrors(err) {
		fields[e.Field] = append(fields[e.Field], e.Message)
	}
	return fields
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", e.Field())
	case "email":
		return "The email must be a valid email address."
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", e.Field(), e.Param())
	default:
		return fmt.Sprintf("The %s is invalid.", e.Field())
	}
}
