package eligibility

import (
	"testing"
	"time"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
)

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func reg(t *testing.T, code string) *domain.Regulation {
	t.Helper()
	r, ok := refdata.SeedSnapshot().Regulation(code)
	if !ok {
		t.Fatalf("seed missing %s", code)
	}
	return r
}

func vehicle(t *testing.T, id string) domain.CanonicalVehicle {
	t.Helper()
	v, ok := refdata.SeedSnapshot().VehicleByID(id)
	if !ok {
		t.Fatalf("seed missing vehicle %s", id)
	}
	return v
}

func TestResolve_AgeExemption(t *testing.T) {
	// USA: 25-year exemption, no safety check.
	e := Resolve(Input{
		Vehicle:    vehicle(t, "nissan-skyline-gtr-bnr32"),
		ModelYear:  1992,
		Regulation: reg(t, "USA"),
		Confidence: 100,
		Now:        testNow,
	})
	if e.Classification != domain.ClassAgeExempt {
		t.Fatalf("classification = %s", e.Classification)
	}
	if e.SafetyCheckRequired {
		t.Error("USA age exemption carries no safety check")
	}
	if len(e.RulePath) != 1 || !e.RulePath[0].Passed {
		t.Errorf("rule path = %+v", e.RulePath)
	}

	// AUS exempts at 25 but keeps a basic safety check.
	e = Resolve(Input{
		Vehicle:    vehicle(t, "nissan-skyline-gtr-bnr32"),
		ModelYear:  1992,
		Regulation: reg(t, "AUS"),
		Confidence: 100,
		Now:        testNow,
	})
	if e.Classification != domain.ClassAgeExempt || !e.SafetyCheckRequired {
		t.Errorf("AUS exemption should keep the safety check sub-flag, got %+v", e)
	}
}

func TestResolve_AgeMonotonic(t *testing.T) {
	// Once a model year qualifies for exemption, every older year does too.
	r := reg(t, "USA")
	v := vehicle(t, "toyota-supra-jza80")
	exempt := false
	for year := testNow.Year(); year >= 1950; year-- {
		e := Resolve(Input{Vehicle: v, ModelYear: year, Regulation: r, Confidence: 100, Now: testNow})
		isExempt := e.Classification == domain.ClassAgeExempt
		if exempt && !isExempt {
			t.Fatalf("year %d not exempt but a newer year was", year)
		}
		exempt = exempt || isExempt
	}
	if !exempt {
		t.Fatal("no model year qualified at all")
	}
}

func TestResolve_ExemptionShortCircuitsAllowList(t *testing.T) {
	// A 1989 BNR32 is on the AUS SEVS list and past the age threshold; the
	// exemption must win because it is checked first.
	e := Resolve(Input{
		Vehicle:    vehicle(t, "nissan-skyline-gtr-bnr32"),
		ModelYear:  1989,
		Regulation: reg(t, "AUS"),
		Confidence: 100,
		Now:        testNow,
	})
	if e.Classification != domain.ClassAgeExempt {
		t.Fatalf("classification = %s, want age_exempt", e.Classification)
	}
}

func TestResolve_SpecialistScheme(t *testing.T) {
	// A 2002 BNR34 is too young for the AUS 25-year rule but on the SEVS list.
	e := Resolve(Input{
		Vehicle:    vehicle(t, "nissan-skyline-gtr-bnr34"),
		ModelYear:  2002,
		Regulation: reg(t, "AUS"),
		Confidence: 100,
		Now:        testNow,
	})
	if e.Classification != domain.ClassSpecialistEligible {
		t.Fatalf("classification = %s", e.Classification)
	}
	// Trail shows the failed age step before the passing scheme step.
	if len(e.RulePath) != 2 || e.RulePath[0].Passed || !e.RulePath[1].Passed {
		t.Errorf("rule path = %+v", e.RulePath)
	}
}

func TestResolve_GeneralCompliance(t *testing.T) {
	e := Resolve(Input{
		Vehicle:    vehicle(t, "toyota-supra-jza80"),
		ModelYear:  2002,
		Regulation: reg(t, "CAN"),
		Confidence: 95,
		Now:        testNow,
	})
	if e.Classification != domain.ClassGeneralEligible {
		t.Fatalf("classification = %s, path = %+v", e.Classification, e.RulePath)
	}
}

func TestResolve_Ineligible(t *testing.T) {
	e := Resolve(Input{
		Vehicle:    domain.CanonicalVehicle{ID: "x", Make: "Koenigsegg", Model: "CC8S"},
		ModelYear:  2022,
		Regulation: reg(t, "AUS"),
		Confidence: 100,
		Now:        testNow,
	})
	if e.Classification != domain.ClassIneligible {
		t.Fatalf("classification = %s", e.Classification)
	}
	last := e.RulePath[len(e.RulePath)-1]
	if last.Rule != RuleFallthrough {
		t.Errorf("trail must end on the fallthrough step, got %+v", last)
	}
}

func TestResolve_NoAgeThresholdConfigured(t *testing.T) {
	r := &domain.Regulation{
		Code: "XXX", Name: "No-age-rule land", Currency: "USD",
		AsOf: testNow, DrivingSide: "right",
		ComplianceHistory: map[string]int{"Toyota": 1990},
	}
	e := Resolve(Input{
		Vehicle:    vehicle(t, "toyota-supra-jza80"),
		ModelYear:  1994,
		Regulation: r,
		Confidence: 100,
		Now:        testNow,
	})
	if e.Classification != domain.ClassGeneralEligible {
		t.Fatalf("classification = %s", e.Classification)
	}
	if e.RulePath[0].Rule != RuleAgeExemption || e.RulePath[0].Passed {
		t.Errorf("age step must record itself as skipped, got %+v", e.RulePath[0])
	}
}

func TestResolve_UndeterminedWrap(t *testing.T) {
	e := Resolve(Input{
		Vehicle:    vehicle(t, "nissan-skyline-gtr-bnr32"),
		ModelYear:  1992,
		Regulation: reg(t, "USA"),
		Confidence: domain.ConfidenceFloor - 1,
		Now:        testNow,
	})
	if e.Classification != domain.ClassUndetermined {
		t.Fatalf("classification = %s", e.Classification)
	}
	if e.Hint != domain.ClassAgeExempt {
		t.Errorf("hint = %s, want age_exempt", e.Hint)
	}
	if e.Confidence != domain.ConfidenceFloor-1 {
		t.Errorf("confidence = %d", e.Confidence)
	}
}

func TestWrapUndetermined_Idempotent(t *testing.T) {
	e := domain.Eligibility{Classification: domain.ClassUndetermined, Hint: domain.ClassIneligible}
	got := WrapUndetermined(e)
	if got.Classification != domain.ClassUndetermined || got.Hint != domain.ClassIneligible {
		t.Errorf("double wrap changed the outcome: %+v", got)
	}
}
