package landedcost

import (
	"errors"
	"testing"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/modplan"
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

func lineAmount(t *testing.T, b Breakdown, name string) domain.Money {
	t.Helper()
	for _, it := range b.LineItems {
		if it.Name == name {
			return it.Amount
		}
	}
	t.Fatalf("no line item %q in %+v", name, b.LineItems)
	return 0
}

func TestCompute_TaxOnCIFPlusDuty(t *testing.T) {
	// AUS: duty 500 bps, GST 1000 bps.
	// price 5_000_000, shipping 300_000.
	// duty = 5_000_000 * 0.05 = 250_000
	// tax base = 5_000_000 + 300_000 + 250_000 = 5_550_000
	// GST = 555_000
	b, err := Compute(5_000_000, 300_000, seedReg(t, "AUS"), modplan.Plan{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got := lineAmount(t, b, "import duty"); got != 250_000 {
		t.Errorf("duty = %d", got)
	}
	if got := lineAmount(t, b, "GST"); got != 555_000 {
		t.Errorf("GST = %d, tax must be computed on price+shipping+duty", got)
	}
	if b.Currency != "AUD" {
		t.Errorf("currency = %s", b.Currency)
	}
	// registration 85_000 + inspection 55_000 + import approval 5_000 +
	// customs processing 9_000 = 154_000 in fixed fees.
	want := domain.Money(5_000_000 + 300_000 + 250_000 + 555_000 + 154_000)
	if b.Total != want {
		t.Errorf("total = %d, want %d", b.Total, want)
	}
}

func TestCompute_ZeroTaxJurisdictionOmitsTaxLine(t *testing.T) {
	b, err := Compute(4_000_000, 200_000, seedReg(t, "USA"), modplan.Plan{})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range b.LineItems {
		if it.Basis == BasisPercentage && it.Name != "import duty" {
			t.Errorf("unexpected percentage line %+v", it)
		}
	}
	if b.Total < 4_000_000+200_000 {
		t.Errorf("total %d below price+shipping", b.Total)
	}
}

func TestCompute_ModificationEstimateExcludedFromTotal(t *testing.T) {
	reg := seedReg(t, "AUS")
	plan := modplan.Plan{
		Items:    []modplan.Item{{Name: "lighting beam conversion", Mandatory: true, Low: 40_000, High: 120_000}},
		Estimate: domain.Range{Low: 40_000, High: 120_000},
	}
	withPlan, err := Compute(5_000_000, 300_000, reg, plan)
	if err != nil {
		t.Fatal(err)
	}
	bare, err := Compute(5_000_000, 300_000, reg, modplan.Plan{})
	if err != nil {
		t.Fatal(err)
	}

	if withPlan.Total != bare.Total {
		t.Errorf("modification estimate leaked into Total: %d vs %d", withPlan.Total, bare.Total)
	}
	if withPlan.ModificationEstimate != plan.Estimate {
		t.Errorf("estimate range = %+v", withPlan.ModificationEstimate)
	}
	wantRange := domain.Range{Low: withPlan.Total + 40_000, High: withPlan.Total + 120_000}
	if withPlan.EstimatedTotalRange != wantRange {
		t.Errorf("estimated total range = %+v, want %+v", withPlan.EstimatedTotalRange, wantRange)
	}
	if got := lineAmount(t, withPlan, "modification estimate"); got != plan.Estimate.Mid() {
		t.Errorf("estimate line shows %d, want midpoint %d", got, plan.Estimate.Mid())
	}
}

func TestCompute_RoundingHalfUpOncePerLine(t *testing.T) {
	// Duty at 610 bps on 12_345: raw 753.045 rounds to 753.
	// Tax base 12_345 + 0 + 753 = 13_098; GST 500 bps: raw 654.9 rounds to 655.
	b, err := Compute(12_345, 0, seedReg(t, "CAN"), modplan.Plan{})
	if err != nil {
		t.Fatal(err)
	}
	if got := lineAmount(t, b, "import duty"); got != 753 {
		t.Errorf("duty = %d, want 753", got)
	}
	if got := lineAmount(t, b, "GST"); got != 655 {
		t.Errorf("GST = %d, want 655", got)
	}
}

func TestCompute_NegativeInputRejected(t *testing.T) {
	if _, err := Compute(-1, 0, seedReg(t, "USA"), modplan.Plan{}); !errors.Is(err, domain.ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
	if _, err := Compute(0, -5, seedReg(t, "USA"), modplan.Plan{}); !errors.Is(err, domain.ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestCompute_EveryLineTaggedWithJurisdictionAndBasis(t *testing.T) {
	b, err := Compute(1_000_000, 50_000, seedReg(t, "GBR"), modplan.Plan{})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range b.LineItems {
		if it.Jurisdiction != "GBR" {
			t.Errorf("%s: jurisdiction = %q", it.Name, it.Jurisdiction)
		}
		switch it.Basis {
		case BasisInput, BasisFixed, BasisPercentage, BasisEstimate:
		default:
			t.Errorf("%s: unknown basis %q", it.Name, it.Basis)
		}
	}
}
