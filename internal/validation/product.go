package validation

import (
	"context"
	"fmt"
	"strconv"

	"pos-catalog/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Field limits for products
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
	MaxSKULength         = 50
	MaxStock             = 999999
)

// MaxPrice is the largest price a NUMERIC(10,2) column accepts
var MaxPrice = decimal.RequireFromString("999999.99")

var validate = validator.New()

// SKUChecker looks up whether a SKU is already used by another product.
// excludeID, when set, is the product being edited and never counts as a clash.
type SKUChecker interface {
	SKUExists(ctx context.Context, sku string, excludeID *int64) (bool, error)
}

// ValidateProduct checks every field of a product submission and returns the normalized
// record. All failing fields are reported together as Errors. productID is nil on create
// and the edited product's id on update.
func ValidateProduct(ctx context.Context, raw Input, productID *int64, skus SKUChecker) (domain.ProductFields, error) {
	input := Normalize(raw)
	errs := Errors{}
	fields := domain.ProductFields{Active: true}

	fields.Name = validateName(input, errs)
	fields.Description = validateDescription(input, errs)
	fields.Price = validatePrice(input, errs)
	fields.Stock = validateStock(input, errs)
	fields.Active = validateActive(input, errs)

	sku, err := validateSKU(ctx, input, productID, skus, errs)
	if err != nil {
		return domain.ProductFields{}, err
	}
	fields.SKU = sku

	if len(errs) > 0 {
		return domain.ProductFields{}, errs
	}
	return fields, nil
}

func validateName(input Input, errs Errors) string {
	name, ok := input[FieldName]
	if !ok {
		errs.Add(FieldName, "Product name is required.")
		return ""
	}
	if validate.Var(name, fmt.Sprintf("max=%d", MaxNameLength)) != nil {
		errs.Add(FieldName, "Product name cannot exceed 255 characters.")
	}
	return name
}

func validateDescription(input Input, errs Errors) *string {
	description, ok := input[FieldDescription]
	if !ok {
		return nil
	}
	if validate.Var(description, fmt.Sprintf("max=%d", MaxDescriptionLength)) != nil {
		errs.Add(FieldDescription, "Description cannot exceed 1000 characters.")
	}
	return &description
}

func validatePrice(input Input, errs Errors) decimal.Decimal {
	raw, ok := input[FieldPrice]
	if !ok {
		errs.Add(FieldPrice, "Price is required.")
		return decimal.Zero
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		errs.Add(FieldPrice, "Price must be a valid number.")
		return decimal.Zero
	}
	if price.IsNegative() {
		errs.Add(FieldPrice, "Price cannot be negative.")
	}
	if price.GreaterThan(MaxPrice) {
		errs.Add(FieldPrice, "Price cannot exceed 999999.99.")
	}
	return price.Round(2)
}

func validateStock(input Input, errs Errors) int {
	raw, ok := input[FieldStock]
	if !ok {
		errs.Add(FieldStock, "Stock quantity is required.")
		return 0
	}

	stock, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(FieldStock, "Stock must be a whole number.")
		return 0
	}
	if validate.Var(stock, "gte=0") != nil {
		errs.Add(FieldStock, "Stock cannot be negative.")
	}
	if validate.Var(stock, fmt.Sprintf("lte=%d", MaxStock)) != nil {
		errs.Add(FieldStock, "Stock cannot exceed 999999.")
	}
	return stock
}

func validateActive(input Input, errs Errors) bool {
	raw, ok := input[FieldActive]
	if !ok {
		return true
	}

	switch raw {
	case "1", "true", "on":
		return true
	case "0", "false", "off":
		return false
	default:
		errs.Add(FieldActive, "The active field must be true or false.")
		return true
	}
}

func validateSKU(ctx context.Context, input Input, productID *int64, skus SKUChecker, errs Errors) (*string, error) {
	sku, ok := input[FieldSKU]
	if !ok {
		return nil, nil
	}
	if validate.Var(sku, fmt.Sprintf("max=%d", MaxSKULength)) != nil {
		errs.Add(FieldSKU, "SKU cannot exceed 50 characters.")
		return &sku, nil
	}

	taken, err := skus.SKUExists(ctx, sku, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check sku uniqueness: %w", err)
	}
	if taken {
		errs.Add(FieldSKU, SKUTakenMessage)
	}
	return &sku, nil
}

// SKUTakenMessage is reported when a SKU already belongs to another product
const SKUTakenMessage = "This SKU is already in use by another product."
