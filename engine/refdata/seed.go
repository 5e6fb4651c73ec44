package refdata

import (
	"time"

	"github.com/PortsideHQ/portside-engine/engine/domain"
)

// seedAsOf is the curation date of the built-in dataset.
var seedAsOf = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

// SeedSnapshot returns the built-in reference dataset: a small curated set of
// jurisdictions and enthusiast-market vehicles so the engine runs with no
// external data source attached. Amounts are minor currency units; rates are
// basis points.
func SeedSnapshot() *Snapshot {
	b := NewBuilder(1, seedAsOf)

	for _, r := range seedRegulations() {
		b.AddRegulation(r)
	}
	for _, v := range seedVehicles {
		b.AddVehicle(v)
	}
	for term, ids := range seedAliases {
		for _, id := range ids {
			b.AddAlias(term, id)
		}
	}

	snap, err := b.Build()
	if err != nil {
		// The seed dataset is compiled in; failing to build it is a bug.
		panic("refdata: seed dataset invalid: " + err.Error())
	}
	return snap
}

func seedRegulations() []*domain.Regulation {
	return []*domain.Regulation{
		{
			Code: "AUS", Name: "Australia", Currency: "AUD", AsOf: seedAsOf,
			DrivingSide: "left",
			DutyRateBps: 500, TaxRateBps: 1000, TaxName: "GST",
			RegistrationFee: 85_000, InspectionFee: 55_000,
			FixedFees: []domain.FixedFee{
				{Name: "import approval", Amount: 5_000, Description: "ROVER import approval application"},
				{Name: "customs processing", Amount: 9_000},
			},
			InspectionTypes:      []string{"RAWS workshop inspection", "roadworthy certificate"},
			RequiredDocuments:    []string{"import approval", "export certificate", "bill of lading"},
			TypeApprovalRequired: true,
			AgeExemptionYears:    25, AgeExemptSafetyCheck: true,
			SchemeName: "SEVS",
			AllowList: []domain.AllowListEntry{
				{Make: "Nissan", Model: "Skyline GT-R", YearFrom: 1989, YearTo: 2002},
				{Make: "Nissan", Model: "Silvia", YearFrom: 1993, YearTo: 2002},
				{Make: "Toyota", Model: "Supra", YearFrom: 1993, YearTo: 2002},
				{Make: "Mazda", Model: "RX-7", YearFrom: 1992, YearTo: 2002},
				{Make: "Honda", Model: "NSX", YearFrom: 1990, YearTo: 2005},
			},
			ComplianceHistory: map[string]int{
				"Toyota": 1988, "Nissan": 1989, "Honda": 1989,
				"Mazda": 1990, "Subaru": 1991, "Mitsubishi": 1991,
			},
			ProcessingDays: 45,
			CommonDelays:   []string{"asbestos inspection hold", "RAWS workshop backlog"},
			Strictness:     "strict",
		},
		{
			Code: "USA", Name: "United States", Currency: "USD", AsOf: seedAsOf,
			DrivingSide: "right",
			DutyRateBps: 250, TaxRateBps: 0, TaxName: "",
			RegistrationFee: 35_000, InspectionFee: 15_000,
			FixedFees: []domain.FixedFee{
				{Name: "customs bond", Amount: 50_000},
				{Name: "EPA form 3520-1", Amount: 0, Description: "no fee, filing required"},
			},
			InspectionTypes:      []string{"state safety inspection"},
			RequiredDocuments:    []string{"HS-7 declaration", "EPA 3520-1", "bill of sale"},
			TypeApprovalRequired: false,
			AgeExemptionYears:    25, AgeExemptSafetyCheck: false,
			SchemeName: "Show or Display",
			AllowList: []domain.AllowListEntry{
				{Make: "Nissan", Model: "Skyline GT-R", YearFrom: 1999, YearTo: 2002},
				{Make: "Honda", Model: "NSX-R", YearFrom: 1992, YearTo: 1995},
			},
			ComplianceHistory: map[string]int{
				"Toyota": 1986, "Nissan": 1986, "Honda": 1986, "Mazda": 1988, "Subaru": 1990,
			},
			ProcessingDays: 30,
			CommonDelays:   []string{"port congestion", "registered importer scheduling"},
			Strictness:     "strict",
		},
		{
			Code: "GBR", Name: "United Kingdom", Currency: "GBP", AsOf: seedAsOf,
			DrivingSide: "left",
			DutyRateBps: 1000, TaxRateBps: 2000, TaxName: "VAT",
			RegistrationFee: 5_500, InspectionFee: 5_485,
			FixedFees: []domain.FixedFee{
				{Name: "NOVA notification", Amount: 0, Description: "no fee, filing required"},
				{Name: "first registration", Amount: 5_500},
			},
			InspectionTypes:      []string{"IVA", "MOT"},
			RequiredDocuments:    []string{"NOVA reference", "export certificate"},
			TypeApprovalRequired: true,
			AgeExemptionYears:    40, AgeExemptSafetyCheck: true,
			ComplianceHistory: map[string]int{
				"Toyota": 1985, "Nissan": 1986, "Honda": 1985, "Mazda": 1987,
				"Subaru": 1989, "Mitsubishi": 1988,
			},
			ProcessingDays: 21,
			CommonDelays:   []string{"IVA test booking lead time"},
			Strictness:     "moderate",
		},
		{
			Code: "NZL", Name: "New Zealand", Currency: "NZD", AsOf: seedAsOf,
			DrivingSide: "left",
			DutyRateBps: 0, TaxRateBps: 1500, TaxName: "GST",
			RegistrationFee: 25_000, InspectionFee: 45_000,
			FixedFees: []domain.FixedFee{
				{Name: "entry certification", Amount: 60_000},
			},
			InspectionTypes:      []string{"entry certification", "WOF"},
			RequiredDocuments:    []string{"export certificate", "deregistration papers"},
			TypeApprovalRequired: false,
			AgeExemptionYears:    20, AgeExemptSafetyCheck: true,
			SchemeName: "Special Interest Vehicle",
			AllowList: []domain.AllowListEntry{
				{Make: "Nissan", Model: "Skyline GT-R", YearFrom: 1989, YearTo: 2002},
				{Make: "Toyota", Model: "Supra", YearFrom: 1993, YearTo: 2002},
			},
			ComplianceHistory: map[string]int{
				"Toyota": 1988, "Nissan": 1988, "Honda": 1988, "Mazda": 1989, "Subaru": 1990,
			},
			ProcessingDays: 25,
			CommonDelays:   []string{"border inspection for contamination"},
			Strictness:     "moderate",
		},
		{
			Code: "CAN", Name: "Canada", Currency: "CAD", AsOf: seedAsOf,
			DrivingSide: "right",
			DutyRateBps: 610, TaxRateBps: 500, TaxName: "GST",
			RegistrationFee: 12_000, InspectionFee: 10_000,
			FixedFees: []domain.FixedFee{
				{Name: "RIV program", Amount: 32_500, Description: "Registrar of Imported Vehicles"},
				{Name: "air conditioning excise", Amount: 10_000},
			},
			InspectionTypes:      []string{"federal inspection", "provincial safety"},
			RequiredDocuments:    []string{"form 1 declaration", "export certificate"},
			TypeApprovalRequired: false,
			AgeExemptionYears:    15, AgeExemptSafetyCheck: true,
			ComplianceHistory: map[string]int{
				"Toyota": 1987, "Nissan": 1987, "Honda": 1987, "Mazda": 1989, "Subaru": 1990,
			},
			ProcessingDays: 20,
			CommonDelays:   []string{"RIV paperwork processing"},
			Strictness:     "low",
		},
		{
			// Export origins carry the same record shape; only the driving
			// side and currency matter for outbound quotes.
			Code: "JPN", Name: "Japan", Currency: "JPY", AsOf: seedAsOf,
			DrivingSide: "left",
			DutyRateBps: 0, TaxRateBps: 1000, TaxName: "consumption tax",
			RegistrationFee: 50_000, InspectionFee: 35_000,
			TypeApprovalRequired: true,
			ComplianceHistory:    map[string]int{"Toyota": 1951, "Nissan": 1951, "Honda": 1963},
			ProcessingDays:       10,
			Strictness:           "strict",
		},
		{
			Code: "DEU", Name: "Germany", Currency: "EUR", AsOf: seedAsOf,
			DrivingSide: "right",
			DutyRateBps: 1000, TaxRateBps: 1900, TaxName: "VAT",
			RegistrationFee: 5_000, InspectionFee: 12_000,
			InspectionTypes:      []string{"TÜV full inspection"},
			TypeApprovalRequired: true,
			AgeExemptionYears:    30, AgeExemptSafetyCheck: true,
			ComplianceHistory:    map[string]int{"Toyota": 1980, "Nissan": 1980, "Honda": 1980, "Mazda": 1980},
			ProcessingDays:       15,
			Strictness:           "strict",
		},
	}
}

var seedVehicles = []domain.CanonicalVehicle{
	{ID: "nissan-skyline-gtr-bnr32", Make: "Nissan", Model: "Skyline GT-R", Chassis: "BNR32", YearFrom: 1989, YearTo: 1994, Engine: "RB26DETT", Drivetrain: "AWD", Manufacturer: "Nissan"},
	{ID: "nissan-skyline-gtr-bcnr33", Make: "Nissan", Model: "Skyline GT-R", Chassis: "BCNR33", YearFrom: 1995, YearTo: 1998, Engine: "RB26DETT", Drivetrain: "AWD", Manufacturer: "Nissan"},
	{ID: "nissan-skyline-gtr-bnr34", Make: "Nissan", Model: "Skyline GT-R", Chassis: "BNR34", YearFrom: 1999, YearTo: 2002, Engine: "RB26DETT", Drivetrain: "AWD", Manufacturer: "Nissan"},
	{ID: "nissan-silvia-s15", Make: "Nissan", Model: "Silvia", Chassis: "S15", YearFrom: 1999, YearTo: 2002, Engine: "SR20DET", Drivetrain: "RWD", Manufacturer: "Nissan"},
	{ID: "toyota-supra-jza80", Make: "Toyota", Model: "Supra", Chassis: "JZA80", YearFrom: 1993, YearTo: 2002, Engine: "2JZ-GTE", Drivetrain: "RWD", Manufacturer: "Toyota"},
	{ID: "toyota-sprinter-trueno-ae86", Make: "Toyota", Model: "Sprinter Trueno", Chassis: "AE86", YearFrom: 1983, YearTo: 1987, Engine: "4A-GE", Drivetrain: "RWD", Manufacturer: "Toyota"},
	{ID: "honda-nsx-na1", Make: "Honda", Model: "NSX", Chassis: "NA1", YearFrom: 1990, YearTo: 1997, Engine: "C30A", Drivetrain: "RWD", Manufacturer: "Honda"},
	{ID: "mazda-rx7-fd3s", Make: "Mazda", Model: "RX-7", Chassis: "FD3S", YearFrom: 1992, YearTo: 2002, Engine: "13B-REW", Drivetrain: "RWD", Manufacturer: "Mazda"},
	{ID: "subaru-impreza-wrx-sti-gc8", Make: "Subaru", Model: "Impreza WRX STI", Chassis: "GC8", YearFrom: 1994, YearTo: 2000, Engine: "EJ207", Drivetrain: "AWD", Manufacturer: "Subaru"},
	{ID: "mitsubishi-lancer-evolution-cp9a", Make: "Mitsubishi", Model: "Lancer Evolution", Chassis: "CP9A", YearFrom: 1998, YearTo: 2001, Engine: "4G63T", Drivetrain: "AWD", Manufacturer: "Mitsubishi"},
	{ID: "toyota-land-cruiser-hdj81", Make: "Toyota", Model: "Land Cruiser", Chassis: "HDJ81", YearFrom: 1990, YearTo: 1997, Engine: "1HD-T", Drivetrain: "4WD", Manufacturer: "Toyota"},
}

// seedAliases maps colloquial names to canonical vehicle IDs. A term may map
// to several vehicles; the normalizer surfaces all of them as alternatives.
var seedAliases = map[string][]string{
	"gtr":       {"nissan-skyline-gtr-bnr32", "nissan-skyline-gtr-bcnr33", "nissan-skyline-gtr-bnr34"},
	"gt-r":      {"nissan-skyline-gtr-bnr32", "nissan-skyline-gtr-bcnr33", "nissan-skyline-gtr-bnr34"},
	"skyline":   {"nissan-skyline-gtr-bnr32", "nissan-skyline-gtr-bcnr33", "nissan-skyline-gtr-bnr34"},
	"godzilla":  {"nissan-skyline-gtr-bnr32", "nissan-skyline-gtr-bcnr33", "nissan-skyline-gtr-bnr34"},
	"r32":       {"nissan-skyline-gtr-bnr32"},
	"r33":       {"nissan-skyline-gtr-bcnr33"},
	"r34":       {"nissan-skyline-gtr-bnr34"},
	"godzilla r34": {"nissan-skyline-gtr-bnr34"},
	"s15":       {"nissan-silvia-s15"},
	"silvia":    {"nissan-silvia-s15"},
	"supra":     {"toyota-supra-jza80"},
	"mk4 supra": {"toyota-supra-jza80"},
	"hachiroku": {"toyota-sprinter-trueno-ae86"},
	"ae86":      {"toyota-sprinter-trueno-ae86"},
	"nsx":       {"honda-nsx-na1"},
	"rx7":       {"mazda-rx7-fd3s"},
	"rx-7":      {"mazda-rx7-fd3s"},
	"fd":        {"mazda-rx7-fd3s"},
	"sti":       {"subaru-impreza-wrx-sti-gc8"},
	"evo":       {"mitsubishi-lancer-evolution-cp9a"},
	"evo 6":     {"mitsubishi-lancer-evolution-cp9a"},
	"landcruiser": {"toyota-land-cruiser-hdj81"},
}
