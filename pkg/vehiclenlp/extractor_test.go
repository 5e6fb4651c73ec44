package vehiclenlp

import "testing"

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Extraction
	}{
		{
			name: "make model year",
			text: "1997 Toyota Supra twin turbo, excellent condition",
			want: Extraction{Make: "Toyota", Model: "Supra", Year: 1997},
		},
		{
			name: "chassis code",
			text: "Nissan Skyline GT-R BNR34 V-Spec",
			want: Extraction{Make: "Nissan", Model: "Skyline GT-R", Chassis: "BNR34"},
		},
		{
			name: "abbreviated year",
			text: "'99 Silvia spec-R for export",
			want: Extraction{Make: "Nissan", Model: "Silvia", Year: 1999},
		},
		{
			name: "abbreviated year pivot",
			text: "'02 mazda RX-7 spirit R",
			want: Extraction{Make: "Mazda", Model: "RX-7", Year: 2002},
		},
		{
			name: "unique model without make",
			text: "clean supra, stock",
			want: Extraction{Make: "Toyota", Model: "Supra"},
		},
		{
			name: "datsun alias",
			text: "datsun fairlady z restoration project",
			want: Extraction{Make: "Nissan", Model: "Fairlady Z"},
		},
		{
			name: "longest model wins",
			text: "Nissan Skyline GT-R, not the GT-S",
			want: Extraction{Make: "Nissan", Model: "Skyline GT-R"},
		},
		{
			name: "nothing recognizable",
			text: "boat trailer, good tires",
			want: Extraction{},
		},
		{
			name: "empty",
			text: "   ",
			want: Extraction{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.text)
			if got.Make != tc.want.Make || got.Model != tc.want.Model ||
				got.Year != tc.want.Year || got.Chassis != tc.want.Chassis {
				t.Errorf("Extract(%q) = %+v, want %+v", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindChassis(t *testing.T) {
	if got := findChassis("one owner, chassis JZA80, export ready"); got != "JZA80" {
		t.Errorf("chassis = %q", got)
	}
	if got := findChassis("no codes here"); got != "" {
		t.Errorf("chassis = %q", got)
	}
}
