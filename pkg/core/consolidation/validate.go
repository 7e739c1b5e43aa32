package consolidation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"bizplan_engine/pkg/core/loan"
	"bizplan_engine/pkg/models"
)

// Input errors are rejected before any computation starts and are fully
// recoverable by the caller correcting its input.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrProjectMismatch = errors.New("trigger project does not match bundle")
)

var validate = validator.New()

// ValidateBundle checks the assumption bundle against the structural
// invariants (non-negative volumes, horizon >= 1, rate bounds) before the
// pipeline runs. All violations surface as InputError-class failures
// wrapping ErrInvalidInput.
func ValidateBundle(bundle models.AssumptionBundle) error {
	if bundle.Project.ID == "" {
		return fmt.Errorf("%w: project id is empty", ErrInvalidInput)
	}
	if bundle.Project.HorizonYears < 1 {
		return fmt.Errorf("%w: horizon_years must be >= 1, got %d", ErrInvalidInput, bundle.Project.HorizonYears)
	}

	if err := validate.Struct(bundle); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Uniqueness: at most one sales row per (product, year, month).
	seen := make(map[models.SalesProjection]bool, len(bundle.Sales))
	for _, row := range bundle.Sales {
		key := models.SalesProjection{ProductID: row.ProductID, Year: row.Year, Month: row.Month}
		if seen[key] {
			return fmt.Errorf("%w: duplicate sales row for product %s year %d month %d",
				ErrInvalidInput, row.ProductID, row.Year, row.Month)
		}
		seen[key] = true
	}

	for _, p := range bundle.Products {
		if n := len(p.Seasonality); n != 0 && n != 12 {
			return fmt.Errorf("%w: product %s seasonality must have 12 weights, got %d", ErrInvalidInput, p.ID, n)
		}
	}

	// Loan terms are input, not computation: a bad loan is rejected here
	// like any other bad record, before the pipeline touches state.
	for _, l := range bundle.Loans {
		if err := loan.Validate(l); err != nil {
			return fmt.Errorf("%w: loan %s: %w", ErrInvalidInput, l.ID, err)
		}
	}

	return nil
}
