package domain

import "testing"

func TestMoneyApplyBps(t *testing.T) {
	cases := []struct {
		name string
		m    Money
		bps  int64
		want Money
	}{
		{"five percent", 1_000_000, 500, 50_000},
		{"ten percent", 3_500_000, 1000, 350_000},
		{"rounds half up", 10_001, 500, 500}, // 500.05 -> 500
		{"rounds half up at boundary", 10_010, 500, 501},
		{"exact half rounds up", 100, 50, 1}, // 0.5 -> 1
		{"zero rate", 1_000_000, 0, 0},
		{"zero amount", 0, 500, 0},
		{"negative amount clamps", -100, 500, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.ApplyBps(tc.bps); got != tc.want {
				t.Errorf("ApplyBps(%d, %d) = %d, want %d", tc.m, tc.bps, got, tc.want)
			}
		})
	}
}

func TestRangeAggregation(t *testing.T) {
	r := Range{}
	items := []Range{{Low: 100, High: 300}, {Low: 50, High: 50}, {Low: 0, High: 900}}
	for _, it := range items {
		r = r.Add(it)
	}
	if r.Low != 150 || r.High != 1250 {
		t.Fatalf("aggregate = %+v, want {150 1250}", r)
	}
	if r.Low > r.High {
		t.Fatal("low must never exceed high")
	}
	if got := r.Mid(); got != 700 {
		t.Errorf("Mid() = %d, want 700", got)
	}
	if got := (Range{Low: 1, High: 2}).Mid(); got != 2 {
		t.Errorf("Mid should round half up, got %d", got)
	}
	shifted := r.Shift(10)
	if shifted.Low != 160 || shifted.High != 1260 {
		t.Errorf("Shift = %+v", shifted)
	}
}

func TestAllowListEntryCovers(t *testing.T) {
	e := AllowListEntry{Make: "Nissan", Model: "Skyline GT-R", YearFrom: 1989, YearTo: 2002}
	if !e.Covers("nissan", "skyline gt-r", 1999) {
		t.Error("expected case-insensitive cover for 1999")
	}
	if e.Covers("Nissan", "Skyline GT-R", 2003) {
		t.Error("2003 is outside the year range")
	}
	if e.Covers("Nissan", "Silvia", 1999) {
		t.Error("different model must not be covered")
	}
}

func TestRegulationComplianceHistory(t *testing.T) {
	r := &Regulation{ComplianceHistory: map[string]int{"Toyota": 1989}}
	if !r.HasComplianceHistory("toyota", 1995) {
		t.Error("Toyota 1995 should have a compliance record")
	}
	if r.HasComplianceHistory("Toyota", 1985) {
		t.Error("1985 predates the first recognised record")
	}
	if r.HasComplianceHistory("Lada", 1995) {
		t.Error("unknown make must have no record")
	}
}
