// Package domain defines the core types, enumerations, and validation for the
// Portside import engine. It acts as the validation gate at engine entry points.
package domain

import (
	"strings"
	"time"
)

// VehicleDescriptor is raw, possibly partial, user input describing a vehicle.
// It is immutable once created; the normalizer resolves it against the
// canonical catalog.
type VehicleDescriptor struct {
	Make      string `json:"make,omitempty"`
	Model     string `json:"model,omitempty"`
	Chassis   string `json:"chassis,omitempty"`
	ModelYear int    `json:"model_year,omitempty"`
	VIN       string `json:"vin,omitempty"`
	FreeText  string `json:"free_text,omitempty"`
}

// Empty reports whether the descriptor carries no usable signal at all.
func (d VehicleDescriptor) Empty() bool {
	return d.Make == "" && d.Model == "" && d.Chassis == "" &&
		d.ModelYear == 0 && d.VIN == "" && strings.TrimSpace(d.FreeText) == ""
}

// CanonicalVehicle is a resolved vehicle record owned by the reference
// catalog. Read-only at request time, keyed by a stable ID.
type CanonicalVehicle struct {
	ID           string `json:"id" yaml:"id"`
	Make         string `json:"make" yaml:"make"`
	Model        string `json:"model" yaml:"model"`
	Chassis      string `json:"chassis" yaml:"chassis"`
	YearFrom     int    `json:"year_from" yaml:"year_from"`
	YearTo       int    `json:"year_to" yaml:"year_to"`
	Engine       string `json:"engine,omitempty" yaml:"engine,omitempty"`
	Drivetrain   string `json:"drivetrain,omitempty" yaml:"drivetrain,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
}

// InProduction reports whether year falls inside the production-year range.
func (v CanonicalVehicle) InProduction(year int) bool {
	return year >= v.YearFrom && year <= v.YearTo
}

// Classification is the closed set of eligibility outcomes.
type Classification string

const (
	ClassAgeExempt            Classification = "age_exempt"
	ClassSpecialistEligible   Classification = "specialist_scheme_eligible"
	ClassGeneralEligible      Classification = "general_import_eligible"
	ClassRequiresModification Classification = "requires_modification"
	ClassIneligible           Classification = "ineligible"
	ClassUndetermined         Classification = "undetermined"
)

// ValidClassifications is the set of recognised classifications.
var ValidClassifications = map[Classification]bool{
	ClassAgeExempt: true, ClassSpecialistEligible: true,
	ClassGeneralEligible: true, ClassRequiresModification: true,
	ClassIneligible: true, ClassUndetermined: true,
}

// Confidence thresholds for vehicle match scores (0–100 scale).
const (
	// ConfidenceFloor is the score below which an eligibility outcome is
	// wrapped as undetermined.
	ConfidenceFloor = 50
	// ConfidenceReliable is the score below which the auditor attaches a
	// low-confidence caveat.
	ConfidenceReliable = 70
)

// RuleCheck records one evaluated step of the eligibility ladder.
type RuleCheck struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
	Note   string `json:"note,omitempty"`
}

// Eligibility is the outcome of the rule ladder plus its audit trail.
type Eligibility struct {
	Classification Classification `json:"classification"`
	RulePath       []RuleCheck    `json:"rule_path"`
	// SafetyCheckRequired marks age-exempt vehicles that still need a basic
	// safety check; it is a sub-flag, not a separate classification.
	SafetyCheckRequired bool `json:"safety_check_required,omitempty"`
	Confidence          int  `json:"confidence"`
	// Hint carries the pre-wrap best guess when the classification is
	// undetermined due to a weak vehicle match.
	Hint Classification `json:"hint,omitempty"`
}

// FixedFee is a named flat charge in the jurisdiction's currency.
type FixedFee struct {
	Name        string `json:"name" yaml:"name"`
	Amount      Money  `json:"amount" yaml:"amount"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// AllowListEntry names a vehicle admitted under a specialist/enthusiast scheme.
type AllowListEntry struct {
	Make     string `json:"make" yaml:"make"`
	Model    string `json:"model" yaml:"model"`
	YearFrom int    `json:"year_from" yaml:"year_from"`
	YearTo   int    `json:"year_to" yaml:"year_to"`
}

// Covers reports whether the entry admits the given make/model/year.
func (e AllowListEntry) Covers(make, model string, year int) bool {
	return strings.EqualFold(e.Make, make) && strings.EqualFold(e.Model, model) &&
		year >= e.YearFrom && year <= e.YearTo
}

// Regulation is the complete rule set for one jurisdiction. Instances are
// long-lived reference data, never mutated per request; refreshes publish a
// whole new snapshot.
type Regulation struct {
	Code     string    `json:"code" yaml:"code"`
	Name     string    `json:"name" yaml:"name"`
	Currency string    `json:"currency" yaml:"currency"`
	AsOf     time.Time `json:"as_of" yaml:"as_of"`

	// DrivingSide is "left" or "right" (the side of the road traffic keeps to).
	DrivingSide string `json:"driving_side" yaml:"driving_side"`

	// Fee schedule. Rates are basis points so all arithmetic stays integral.
	DutyRateBps     int64      `json:"duty_rate_bps" yaml:"duty_rate_bps"`
	TaxRateBps      int64      `json:"tax_rate_bps" yaml:"tax_rate_bps"`
	TaxName         string     `json:"tax_name" yaml:"tax_name"`
	FixedFees       []FixedFee `json:"fixed_fees,omitempty" yaml:"fixed_fees,omitempty"`
	RegistrationFee Money      `json:"registration_fee" yaml:"registration_fee"`
	InspectionFee   Money      `json:"inspection_fee" yaml:"inspection_fee"`

	// Registration and import requirements.
	InspectionTypes      []string `json:"inspection_types,omitempty" yaml:"inspection_types,omitempty"`
	RequiredDocuments    []string `json:"required_documents,omitempty" yaml:"required_documents,omitempty"`
	TypeApprovalRequired bool     `json:"type_approval_required" yaml:"type_approval_required"`

	// Age exemption. Zero means the jurisdiction has no age rule at all.
	AgeExemptionYears    int  `json:"age_exemption_years,omitempty" yaml:"age_exemption_years,omitempty"`
	AgeExemptSafetyCheck bool `json:"age_exempt_safety_check,omitempty" yaml:"age_exempt_safety_check,omitempty"`

	// Specialist/enthusiast scheme allow-list.
	SchemeName string           `json:"scheme_name,omitempty" yaml:"scheme_name,omitempty"`
	AllowList  []AllowListEntry `json:"allow_list,omitempty" yaml:"allow_list,omitempty"`

	// ComplianceHistory maps a make to the first model year for which the
	// manufacturer holds a recognised compliance record in this jurisdiction.
	ComplianceHistory map[string]int `json:"compliance_history,omitempty" yaml:"compliance_history,omitempty"`

	// Regional metadata.
	ProcessingDays int      `json:"processing_days,omitempty" yaml:"processing_days,omitempty"`
	CommonDelays   []string `json:"common_delays,omitempty" yaml:"common_delays,omitempty"`
	Strictness     string   `json:"strictness,omitempty" yaml:"strictness,omitempty"`
}

// OnAllowList returns the matching allow-list entry, if any.
func (r *Regulation) OnAllowList(make, model string, year int) (AllowListEntry, bool) {
	for _, e := range r.AllowList {
		if e.Covers(make, model, year) {
			return e, true
		}
	}
	return AllowListEntry{}, false
}

// HasComplianceHistory reports whether the make holds a compliance record
// effective at or before the given model year.
func (r *Regulation) HasComplianceHistory(make string, modelYear int) bool {
	for m, firstYear := range r.ComplianceHistory {
		if strings.EqualFold(m, make) {
			return modelYear >= firstYear
		}
	}
	return false
}
