package validation

import (
	"sort"
	"strings"
)

// Errors maps a field name to its human-readable validation messages
type Errors map[string][]string

// Add appends a message to the field
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Has reports whether the field failed validation
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for the field, or an empty string
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the failed field names in sorted order
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+strings.Join(e[field], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
