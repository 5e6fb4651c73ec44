// Package quote orchestrates a full import quote: vehicle normalization,
// eligibility classification, modification planning, landed-cost computation,
// and freshness annotation. A quote is a pure function of the request and the
// current reference-data snapshot.
package quote

import (
	"time"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/landedcost"
	"github.com/PortsideHQ/portside-engine/engine/modplan"
)

// Request is one quote invocation. Amounts are minor currency units of the
// destination jurisdiction.
type Request struct {
	Vehicle           domain.VehicleDescriptor `json:"vehicle"`
	OriginRegion      string                   `json:"origin_region"`
	DestinationRegion string                   `json:"destination_region"`
	VehiclePrice      domain.Money             `json:"vehicle_price"`
	ShippingCost      domain.Money             `json:"shipping_cost"`
}

// MatchedVehicle is the resolved identity surfaced to the caller.
type MatchedVehicle struct {
	ID         string `json:"id,omitempty"`
	Make       string `json:"make,omitempty"`
	Model      string `json:"model,omitempty"`
	Chassis    string `json:"chassis,omitempty"`
	YearFrom   int    `json:"year_from,omitempty"`
	YearTo     int    `json:"year_to,omitempty"`
	Confidence int    `json:"confidence"`
	Tier       string `json:"tier"`
	Unresolved bool   `json:"unresolved,omitempty"`
}

// Quote is the complete response. Identical requests against the same
// dataset version produce byte-identical quotes, including the ID.
type Quote struct {
	ID             string               `json:"id"`
	MatchedVehicle MatchedVehicle       `json:"matched_vehicle"`
	Alternatives   []MatchedVehicle     `json:"alternatives,omitempty"`
	Eligibility    domain.Eligibility   `json:"eligibility"`
	Modifications  modplan.Plan         `json:"modifications"`
	CostBreakdown  landedcost.Breakdown `json:"cost_breakdown"`
	Caveats        []string             `json:"caveats,omitempty"`
	DatasetVersion int                  `json:"dataset_version"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// BatchItem is one outcome of a batch quote; exactly one field is set.
type BatchItem struct {
	Quote *Quote `json:"quote,omitempty"`
	Error string `json:"error,omitempty"`
}
