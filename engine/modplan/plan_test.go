package modplan

import (
	"reflect"
	"testing"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
)

func seedReg(t *testing.T, code string) *domain.Regulation {
	t.Helper()
	r, ok := refdata.SeedSnapshot().Regulation(code)
	if !ok {
		t.Fatalf("seed missing %s", code)
	}
	return r
}

func TestBuild_EstimateSumsLowsAndHighsSeparately(t *testing.T) {
	p := Build(domain.ClassGeneralEligible, false, seedReg(t, "JPN"), seedReg(t, "AUS"))
	var low, high domain.Money
	for _, it := range p.Items {
		low += it.Low
		high += it.High
		if it.Low > it.High {
			t.Errorf("%s: low %d > high %d", it.Name, it.Low, it.High)
		}
	}
	if p.Estimate.Low != low || p.Estimate.High != high {
		t.Errorf("estimate = %+v, want {%d %d}", p.Estimate, low, high)
	}
}

func TestBuild_GeneralBaseline(t *testing.T) {
	// JPN and AUS both drive on the left, so no drive-position rider.
	p := Build(domain.ClassGeneralEligible, false, seedReg(t, "JPN"), seedReg(t, "AUS"))
	names := itemNames(p)
	want := []string{
		"compliance plate installation",
		"lighting beam conversion",
		"speed display unit conversion",
		"restraint anchorage inspection",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("items = %v", names)
	}
	// AUS requires type approval and is strict: everything is mandatory.
	if !p.HasMandatory() {
		t.Error("strict destination must produce mandatory items")
	}
	for _, it := range p.Items {
		if !it.Mandatory {
			t.Errorf("%s should be mandatory for a strict type-approval jurisdiction", it.Name)
		}
	}
}

func TestBuild_LowStrictnessRelaxesMandatoryFlags(t *testing.T) {
	// CAN: no type approval, low strictness. The baseline survives as
	// optional items, so a general import is not forcibly downgraded.
	p := Build(domain.ClassGeneralEligible, false, seedReg(t, "JPN"), seedReg(t, "CAN"))
	if p.HasMandatory() {
		t.Errorf("low-strictness destination produced mandatory items: %+v", p.Items)
	}
}

func TestBuild_DrivePositionRider(t *testing.T) {
	// Left-drive origin into a right-drive destination adds the conversion.
	p := Build(domain.ClassGeneralEligible, false, seedReg(t, "JPN"), seedReg(t, "USA"))
	if !hasItem(p, "drive position conversion") {
		t.Fatalf("missing drive position rider: %v", itemNames(p))
	}

	// Same driving side: no rider.
	p = Build(domain.ClassGeneralEligible, false, seedReg(t, "JPN"), seedReg(t, "GBR"))
	if hasItem(p, "drive position conversion") {
		t.Error("rider added despite matching driving sides")
	}
}

func TestBuild_SpecialistExcludesConversionItems(t *testing.T) {
	// Scheme vehicles keep their original layout; no beam or drive items.
	p := Build(domain.ClassSpecialistEligible, false, seedReg(t, "JPN"), seedReg(t, "AUS"))
	for _, name := range []string{"lighting beam conversion", "drive position conversion"} {
		if hasItem(p, name) {
			t.Errorf("specialist plan must not carry %q", name)
		}
	}
	if !hasItem(p, "scheme workshop inspection") {
		t.Errorf("items = %v", itemNames(p))
	}
}

func TestBuild_AgeExempt(t *testing.T) {
	p := Build(domain.ClassAgeExempt, true, seedReg(t, "JPN"), seedReg(t, "AUS"))
	if len(p.Items) != 1 || p.Items[0].Name != "basic safety check" || !p.Items[0].Mandatory {
		t.Errorf("items = %+v", p.Items)
	}

	p = Build(domain.ClassAgeExempt, false, seedReg(t, "JPN"), seedReg(t, "USA"))
	if len(p.Items) != 0 || !p.Estimate.IsZero() {
		t.Errorf("exempt without safety check must be an empty plan, got %+v", p)
	}
}

func TestBuild_IneligibleAndUndeterminedAreEmpty(t *testing.T) {
	for _, class := range []domain.Classification{domain.ClassIneligible, domain.ClassUndetermined} {
		p := Build(class, false, seedReg(t, "JPN"), seedReg(t, "AUS"))
		if len(p.Items) != 0 || !p.Estimate.IsZero() {
			t.Errorf("%s: expected empty plan, got %+v", class, p)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(domain.ClassGeneralEligible, false, seedReg(t, "JPN"), seedReg(t, "USA"))
	b := Build(domain.ClassGeneralEligible, false, seedReg(t, "JPN"), seedReg(t, "USA"))
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical plans")
	}
}

func itemNames(p Plan) []string {
	names := make([]string, len(p.Items))
	for i, it := range p.Items {
		names[i] = it.Name
	}
	return names
}

func hasItem(p Plan, name string) bool {
	for _, it := range p.Items {
		if it.Name == name {
			return true
		}
	}
	return false
}
