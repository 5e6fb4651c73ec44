// Package modplan derives the ordered list of compliance modifications a
// vehicle needs for a given eligibility classification, with an honest
// low/high cost range per item. Plans are recomputed per request, never
// persisted, and are deterministic for identical inputs.
package modplan

import "github.com/PortsideHQ/portside-engine/engine/domain"

// Item is one compliance modification with an independent cost estimate in
// the destination's minor currency units.
type Item struct {
	Name      string       `json:"name"`
	Mandatory bool         `json:"mandatory"`
	Low       domain.Money `json:"low"`
	High      domain.Money `json:"high"`
}

// Plan is the ordered modification list plus the summed cost range. Lows and
// highs are summed separately; midpoints would hide the spread.
type Plan struct {
	Items    []Item       `json:"items"`
	Estimate domain.Range `json:"estimate"`
}

// HasMandatory reports whether any item in the plan is mandatory.
func (p Plan) HasMandatory() bool {
	for _, it := range p.Items {
		if it.Mandatory {
			return true
		}
	}
	return false
}

// Build produces the plan for a classification, layering the classification
// baseline with origin-specific riders. Mandatory flags on the general
// baseline follow the destination's regime: type approval forces the
// compliance plate, and strictness decides how hard the conversion items bite.
func Build(class domain.Classification, safetyCheck bool, origin, dest *domain.Regulation) Plan {
	var items []Item

	switch class {
	case domain.ClassAgeExempt:
		if safetyCheck {
			items = append(items, Item{Name: "basic safety check", Mandatory: true, Low: 15_000, High: 40_000})
		}
	case domain.ClassSpecialistEligible:
		items = append(items,
			Item{Name: "scheme workshop inspection", Mandatory: true, Low: 60_000, High: 150_000},
			Item{Name: "compliance plate installation", Mandatory: dest.TypeApprovalRequired, Low: 30_000, High: 80_000},
		)
	case domain.ClassGeneralEligible, domain.ClassRequiresModification:
		strict := dest.Strictness == "strict"
		items = append(items,
			Item{Name: "compliance plate installation", Mandatory: dest.TypeApprovalRequired, Low: 30_000, High: 80_000},
			Item{Name: "lighting beam conversion", Mandatory: strict, Low: 40_000, High: 120_000},
			Item{Name: "speed display unit conversion", Mandatory: strict, Low: 15_000, High: 45_000},
			Item{Name: "restraint anchorage inspection", Mandatory: dest.Strictness != "low", Low: 20_000, High: 60_000},
		)
	default:
		// Ineligible and undetermined vehicles get no plan: there is nothing
		// a workshop can do about the former, and nothing certain to plan for
		// the latter.
		return Plan{}
	}

	// Drive-position conversion applies only to the general import family;
	// age-exempt and scheme vehicles register with their original layout.
	if generalFamily(class) && origin != nil && origin.DrivingSide != dest.DrivingSide {
		items = append(items, Item{
			Name:      "drive position conversion",
			Mandatory: dest.Strictness == "strict",
			Low:       800_000,
			High:      2_500_000,
		})
	}

	return Plan{Items: items, Estimate: estimate(items)}
}

func generalFamily(class domain.Classification) bool {
	return class == domain.ClassGeneralEligible || class == domain.ClassRequiresModification
}

func estimate(items []Item) domain.Range {
	var r domain.Range
	for _, it := range items {
		r.Low += it.Low
		r.High += it.High
	}
	return r
}
