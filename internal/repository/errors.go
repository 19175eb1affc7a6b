package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateUniqueViolation = "23505"
	sqlStateCheckViolation  = "23514"
)

// constraintFields maps database constraint names to the input field they guard
var constraintFields = map[string]string{
	"products_sku_key":     "sku",
	"products_price_check": "price",
	"products_stock_check": "stock",
	"users_email_key":      "email",
}

// ConstraintError reports a write rejected by a database constraint
type ConstraintError struct {
	Constraint string
	Field      string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %s violated on field %s", e.Constraint, e.Field)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// asConstraintError converts unique and check violations into a ConstraintError
func asConstraintError(err error) (*ConstraintError, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil, false
	}
	if pgErr.Code != sqlStateUniqueViolation && pgErr.Code != sqlStateCheckViolation {
		return nil, false
	}

	return &ConstraintError{
		Constraint: pgErr.ConstraintName,
		Field:      constraintFields[pgErr.ConstraintName],
		Err:        err,
	}, true
}
