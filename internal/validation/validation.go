// Package validation provides request parameter validation helpers.
package validation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
)

// Error carries per-field validation failures.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if id == "" {
		return apperrors.ErrEmptyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ErrInvalidUUID
	}
	return nil
}

// ParseView converts a request parameter into a composition view.
// Unknown names are rejected with apperrors.ErrUnsupportedView, never
// defaulted.
func ParseView(s string) (model.View, error) {
	switch s {
	case "sector":
		return model.ViewSector, nil
	case "asset_class":
		return model.ViewAssetClass, nil
	case "risk":
		return model.ViewRisk, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedView, s)
	}
}
