// Package eligibility classifies a canonical vehicle against one
// jurisdiction's regulation through an ordered, first-match-wins rule ladder.
// Every step, taken or skipped, records itself in the rule path so the
// outcome is auditable.
package eligibility

import (
	"fmt"
	"time"

	"github.com/PortsideHQ/portside-engine/engine/domain"
)

// Rule names as they appear in the rule path.
const (
	RuleAgeExemption     = "age_exemption"
	RuleSpecialistScheme = "specialist_scheme"
	RuleCompliance       = "manufacturer_compliance"
	RuleFallthrough      = "fallthrough"
)

// Input is everything the resolver needs for one classification.
type Input struct {
	Vehicle    domain.CanonicalVehicle
	ModelYear  int
	Regulation *domain.Regulation
	Confidence int // match confidence from the normalizer, 0–100
	Now        time.Time
}

// Resolve walks the rule ladder in precedence order: age exemption first
// (the cheapest, most permissive path), then the specialist allow-list, then
// manufacturer compliance history, then ineligible. A weak vehicle match
// wraps the outcome as undetermined afterward, keeping the ladder's answer
// as a hint.
func Resolve(in Input) domain.Eligibility {
	e := classify(in)
	e.Confidence = in.Confidence
	if in.Confidence < domain.ConfidenceFloor {
		e = WrapUndetermined(e)
	}
	return e
}

func classify(in Input) domain.Eligibility {
	reg := in.Regulation
	age := in.Now.Year() - in.ModelYear
	var trail []domain.RuleCheck

	// Age exemption is a property of the jurisdiction: without a configured
	// threshold the step records itself as skipped rather than assuming one.
	if reg.AgeExemptionYears > 0 {
		if age >= reg.AgeExemptionYears {
			e := domain.Eligibility{
				Classification:      domain.ClassAgeExempt,
				SafetyCheckRequired: reg.AgeExemptSafetyCheck,
			}
			note := fmt.Sprintf("vehicle age %d years meets the %d-year exemption", age, reg.AgeExemptionYears)
			if reg.AgeExemptSafetyCheck {
				note += "; basic safety check still required"
			}
			e.RulePath = append(trail, domain.RuleCheck{Rule: RuleAgeExemption, Passed: true, Note: note})
			return e
		}
		trail = append(trail, domain.RuleCheck{
			Rule: RuleAgeExemption,
			Note: fmt.Sprintf("vehicle age %d years is below the %d-year exemption", age, reg.AgeExemptionYears),
		})
	} else {
		trail = append(trail, domain.RuleCheck{Rule: RuleAgeExemption, Note: "no age threshold configured"})
	}

	if entry, ok := reg.OnAllowList(in.Vehicle.Make, in.Vehicle.Model, in.ModelYear); ok {
		scheme := reg.SchemeName
		if scheme == "" {
			scheme = "specialist scheme"
		}
		return domain.Eligibility{
			Classification: domain.ClassSpecialistEligible,
			RulePath: append(trail, domain.RuleCheck{
				Rule:   RuleSpecialistScheme,
				Passed: true,
				Note:   fmt.Sprintf("%s %s (%d-%d) listed under %s", entry.Make, entry.Model, entry.YearFrom, entry.YearTo, scheme),
			}),
		}
	}
	trail = append(trail, domain.RuleCheck{Rule: RuleSpecialistScheme, Note: "not on the allow-list"})

	if reg.HasComplianceHistory(in.Vehicle.Make, in.ModelYear) {
		return domain.Eligibility{
			Classification: domain.ClassGeneralEligible,
			RulePath: append(trail, domain.RuleCheck{
				Rule:   RuleCompliance,
				Passed: true,
				Note:   fmt.Sprintf("%s holds a compliance record covering %d", in.Vehicle.Make, in.ModelYear),
			}),
		}
	}
	trail = append(trail, domain.RuleCheck{
		Rule: RuleCompliance,
		Note: fmt.Sprintf("no compliance record for %s covering %d", in.Vehicle.Make, in.ModelYear),
	})

	return domain.Eligibility{
		Classification: domain.ClassIneligible,
		RulePath:       append(trail, domain.RuleCheck{Rule: RuleFallthrough, Note: "no eligibility path matched"}),
	}
}

// WrapUndetermined demotes an eligibility outcome whose vehicle match was too
// weak to act on, keeping the ladder's answer as a hint only. The rule path
// is preserved so the caller can still see how the hint was derived.
func WrapUndetermined(e domain.Eligibility) domain.Eligibility {
	if e.Classification == domain.ClassUndetermined {
		return e
	}
	e.Hint = e.Classification
	e.Classification = domain.ClassUndetermined
	e.RulePath = append(e.RulePath, domain.RuleCheck{
		Rule: "match_confidence",
		Note: fmt.Sprintf("vehicle match confidence %d below floor %d", e.Confidence, domain.ConfidenceFloor),
	})
	return e
}
