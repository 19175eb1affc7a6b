package validation

import (
	"strconv"
	"strings"

	"pos-catalog/internal/domain"
)

// Product form field names
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldStock       = "stock"
	FieldActive      = "active"
	FieldSKU         = "sku"
)

// ProductFields lists every field accepted on a product form
var ProductFields = []string{FieldName, FieldDescription, FieldPrice, FieldStock, FieldActive, FieldSKU}

// Input is a raw product submission. A missing key means the field was not submitted.
type Input map[string]string

// Normalize trims every value, drops blank values and ignores unknown fields
func Normalize(raw Input) Input {
	input := make(Input, len(raw))
	for _, field := range ProductFields {
		value, ok := raw[field]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		input[field] = value
	}
	return input
}

// Merge overlays the submitted fields onto base and returns a new Input
func Merge(base, overlay Input) Input {
	merged := make(Input, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

// InputFromProduct renders a stored product back into form values
func InputFromProduct(p *domain.Product) Input {
	input := Input{
		FieldName:   p.Name,
		FieldPrice:  p.Price.StringFixed(2),
		FieldStock:  strconv.Itoa(p.Stock),
		FieldActive: strconv.FormatBool(p.Active),
	}
	if p.Description != nil {
		input[FieldDescription] = *p.Description
	}
	if p.SKU != nil {
		input[FieldSKU] = *p.SKU
	}
	return Normalize(input)
}
