package utils

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"clubfees/internal/billing"
)

var (
	ErrInvalidRequest = errors.New("invalid request payload")
	ErrDatabaseError  = errors.New("database error")
)

// ParseID parses a path or body identifier, reporting a validation error naming field.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, billing.NewValidationError("parse", field, fmt.Errorf("%w: %q", billing.ErrInvalidValue, raw))
	}
	return id, nil
}

// ParseOptionalID is ParseID for optional fields; nil and empty yield nil.
func ParseOptionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := ParseID(field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
