package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// VIN fragments: 3–17 alphanumerics, excluding I, O, Q. Shorter than a full
// VIN is accepted because JDM chassis-number fragments are common input.
var vinFragmentRegex = regexp.MustCompile(`^[A-HJ-NPR-Z0-9-]{3,17}$`)

// Model years the engine accepts. The upper bound leaves room for next-year
// models in dealer listings.
const (
	MinModelYear = 1950
	MaxModelYear = 2030
)

// ValidateDescriptor checks a VehicleDescriptor for structural problems.
// It does not decide whether the vehicle exists; that is the normalizer's job.
func ValidateDescriptor(d VehicleDescriptor) error {
	if d.Empty() {
		return NewValidationError("descriptor", "", ErrInvalidDescriptor)
	}
	if d.ModelYear != 0 && (d.ModelYear < MinModelYear || d.ModelYear > MaxModelYear) {
		return NewValidationError("model_year", fmt.Sprintf("%d", d.ModelYear), ErrYearOutOfRange)
	}
	if d.VIN != "" && !vinFragmentRegex.MatchString(strings.ToUpper(d.VIN)) {
		return NewValidationError("vin", d.VIN, ErrInvalidVIN)
	}
	return nil
}

// ValidateAmounts checks that monetary inputs are non-negative.
func ValidateAmounts(price, shipping Money) error {
	if price < 0 {
		return NewValidationError("vehicle_price", fmt.Sprintf("%d", price), ErrNegativeAmount)
	}
	if shipping < 0 {
		return NewValidationError("shipping_cost", fmt.Sprintf("%d", shipping), ErrNegativeAmount)
	}
	return nil
}

// ValidateRegulation checks a regulation record before it is admitted to a
// snapshot. Stale or partial regulation data must never be silently trusted.
func ValidateRegulation(r *Regulation) error {
	if r.Code == "" {
		return NewValidationError("code", "", ErrInvalidRegulation)
	}
	if r.Currency == "" {
		return NewValidationError("currency", r.Code, ErrInvalidRegulation)
	}
	if r.AsOf.IsZero() {
		return NewValidationError("as_of", r.Code, ErrInvalidRegulation)
	}
	if r.DrivingSide != "left" && r.DrivingSide != "right" {
		return NewValidationError("driving_side", r.DrivingSide, ErrInvalidRegulation)
	}
	if r.DutyRateBps < 0 || r.TaxRateBps < 0 || r.RegistrationFee < 0 || r.InspectionFee < 0 {
		return NewValidationError("fees", r.Code, ErrInvalidRegulation)
	}
	for _, f := range r.FixedFees {
		if f.Amount < 0 {
			return NewValidationError("fixed_fee."+f.Name, r.Code, ErrInvalidRegulation)
		}
	}
	for _, e := range r.AllowList {
		if e.Make == "" || e.Model == "" || e.YearTo < e.YearFrom {
			return NewValidationError("allow_list", fmt.Sprintf("%s %s", e.Make, e.Model), ErrInvalidRegulation)
		}
	}
	return nil
}
