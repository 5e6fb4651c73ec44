// Package landedcost composes duty, tax, and fee line items into a total
// landed-cost breakdown. All arithmetic is integer minor currency units with
// basis-point rates, rounded half-up once per line item and never compounded.
package landedcost

import (
	"fmt"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/modplan"
)

// Computation bases a line item can carry.
const (
	BasisInput      = "input"      // supplied by the caller verbatim
	BasisFixed      = "fixed"      // flat fee from the jurisdiction schedule
	BasisPercentage = "percentage" // bps rate applied to a stated base
	BasisEstimate   = "estimate"   // workshop estimate, not a government fee
)

// LineItem is one entry of the breakdown. Estimate-basis items carry the
// midpoint as Amount for display; the full range lives on the Breakdown.
type LineItem struct {
	Name         string       `json:"name"`
	Amount       domain.Money `json:"amount"`
	Jurisdiction string       `json:"jurisdiction"`
	Basis        string       `json:"basis"`
	RateBps      int64        `json:"rate_bps,omitempty"`
	Note         string       `json:"note,omitempty"`
}

// Breakdown is the complete landed-cost result in the destination currency.
// Total covers input, fixed, and percentage lines only; the modification
// estimate is surfaced as its own range so it is never mistaken for a
// government-mandated fee.
type Breakdown struct {
	LineItems            []LineItem   `json:"line_items"`
	Total                domain.Money `json:"total"`
	Currency             string       `json:"currency"`
	ModificationEstimate domain.Range `json:"modification_estimate"`
	EstimatedTotalRange  domain.Range `json:"estimated_total_range"`
}

// Compute builds the breakdown in schedule order: duty on the vehicle price,
// then tax on the CIF-plus-duty base (duty is itself taxable), then fixed
// fees verbatim, then the modification estimate as a labeled range.
func Compute(price, shipping domain.Money, reg *domain.Regulation, plan modplan.Plan) (Breakdown, error) {
	if err := domain.ValidateAmounts(price, shipping); err != nil {
		return Breakdown{}, err
	}

	code := reg.Code
	items := []LineItem{
		{Name: "vehicle price", Amount: price, Jurisdiction: code, Basis: BasisInput},
		{Name: "shipping", Amount: shipping, Jurisdiction: code, Basis: BasisInput},
	}

	duty := price.ApplyBps(reg.DutyRateBps)
	items = append(items, LineItem{
		Name: "import duty", Amount: duty, Jurisdiction: code,
		Basis: BasisPercentage, RateBps: reg.DutyRateBps,
		Note: "applied to vehicle price",
	})

	if reg.TaxRateBps > 0 {
		taxBase := price + shipping + duty
		name := reg.TaxName
		if name == "" {
			name = "import tax"
		}
		items = append(items, LineItem{
			Name: name, Amount: taxBase.ApplyBps(reg.TaxRateBps), Jurisdiction: code,
			Basis: BasisPercentage, RateBps: reg.TaxRateBps,
			Note: "applied to price + shipping + duty",
		})
	}

	items = append(items,
		LineItem{Name: "registration fee", Amount: reg.RegistrationFee, Jurisdiction: code, Basis: BasisFixed},
		LineItem{Name: "inspection fee", Amount: reg.InspectionFee, Jurisdiction: code, Basis: BasisFixed},
	)
	for _, fee := range reg.FixedFees {
		items = append(items, LineItem{
			Name: fee.Name, Amount: fee.Amount, Jurisdiction: code,
			Basis: BasisFixed, Note: fee.Description,
		})
	}

	var total domain.Money
	for _, it := range items {
		total += it.Amount
	}

	est := plan.Estimate
	if !est.IsZero() {
		items = append(items, LineItem{
			Name: "modification estimate", Amount: est.Mid(), Jurisdiction: code,
			Basis: BasisEstimate,
			Note:  fmt.Sprintf("workshop estimate %d-%d, midpoint shown, excluded from total", est.Low, est.High),
		})
	}

	return Breakdown{
		LineItems:            items,
		Total:                total,
		Currency:             reg.Currency,
		ModificationEstimate: est,
		EstimatedTotalRange:  domain.Range{Low: total, High: total}.Add(est),
	}, nil
}
