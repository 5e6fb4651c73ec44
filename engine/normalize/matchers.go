package normalize

import (
	"strings"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
)

// Confidence bands, one per matcher tier.
const (
	ConfidenceExact     = 100 // chassis code or VIN prefix identity
	ConfidenceMakeModel = 95  // make+model with the year inside production range
	ConfidenceAlias     = 85  // colloquial-name table hit
	ConfidenceFuzzy     = 60  // edit-distance text match
	ConfidenceInferred  = 40  // make inferred from a bare model name
)

// Specificity ranks break confidence ties: a chassis-level match beats a
// model+year match beats a model-only match.
const (
	specChassis   = 3
	specModelYear = 2
	specModelOnly = 1
)

// matcher is one tier of the normalizer ladder.
type matcher interface {
	name() string
	match(desc domain.VehicleDescriptor, snap *refdata.Snapshot) []Candidate
}

// identityMatcher resolves exact chassis codes, either given directly or as
// the prefix of a JDM-style VIN/frame number ("BNR34-005678").
type identityMatcher struct{}

func (identityMatcher) name() string { return "identity" }

func (identityMatcher) match(desc domain.VehicleDescriptor, snap *refdata.Snapshot) []Candidate {
	var out []Candidate
	if desc.Chassis != "" {
		for _, v := range snap.VehiclesByChassis(desc.Chassis) {
			out = append(out, Candidate{Vehicle: v, Confidence: ConfidenceExact, Tier: "chassis", specificity: specChassis})
		}
	}
	if desc.VIN != "" {
		vin := strings.ToUpper(desc.VIN)
		prefix := vin
		if i := strings.IndexByte(vin, '-'); i > 0 {
			prefix = vin[:i]
		}
		for _, v := range snap.VehiclesByChassis(prefix) {
			out = append(out, Candidate{Vehicle: v, Confidence: ConfidenceExact, Tier: "vin", specificity: specChassis})
		}
	}
	return out
}

// makeModelMatcher resolves make+model input, requiring year containment in
// the production range whenever a model year was supplied.
type makeModelMatcher struct{}

func (makeModelMatcher) name() string { return "make_model" }

func (makeModelMatcher) match(desc domain.VehicleDescriptor, snap *refdata.Snapshot) []Candidate {
	if desc.Make == "" || desc.Model == "" {
		return nil
	}
	var out []Candidate
	for _, v := range snap.Vehicles() {
		if !strings.EqualFold(v.Make, desc.Make) || !strings.EqualFold(v.Model, desc.Model) {
			continue
		}
		spec := specModelOnly
		if desc.ModelYear != 0 {
			if !v.InProduction(desc.ModelYear) {
				continue
			}
			spec = specModelYear
		}
		out = append(out, Candidate{Vehicle: v, Confidence: ConfidenceMakeModel, Tier: "make_model", specificity: spec})
	}
	return out
}

// aliasMatcher resolves colloquial names ("godzilla", "hachiroku") from the
// snapshot's alias table, scanning free text, the model field, and the
// chassis field for known terms.
type aliasMatcher struct{}

func (aliasMatcher) name() string { return "alias" }

func (aliasMatcher) match(desc domain.VehicleDescriptor, snap *refdata.Snapshot) []Candidate {
	terms := tokenize(desc.FreeText)
	if desc.Model != "" {
		terms = append(terms, strings.ToLower(desc.Model))
	}
	if desc.Chassis != "" {
		terms = append(terms, strings.ToLower(desc.Chassis))
	}

	// Tally how many distinct terms corroborate each vehicle: "godzilla r34"
	// hits the BNR34 three times, the other generations once, so the BNR34
	// ranks first while the siblings stay visible as alternatives.
	counts := make(map[string]int)
	var matched []domain.CanonicalVehicle
	for _, term := range terms {
		for _, v := range snap.AliasTargets(term) {
			if desc.ModelYear != 0 && !v.InProduction(desc.ModelYear) {
				continue
			}
			if counts[v.ID] == 0 {
				matched = append(matched, v)
			}
			counts[v.ID]++
		}
	}

	out := make([]Candidate, 0, len(matched))
	for _, v := range matched {
		spec := specModelOnly
		if desc.ModelYear != 0 {
			spec = specModelYear
		}
		out = append(out, Candidate{Vehicle: v, Confidence: ConfidenceAlias, Tier: "alias", specificity: spec, hits: counts[v.ID]})
	}
	return out
}

// fuzzyMatcher is the edit-distance fallback over alias terms and model
// names, for typos the alias table does not anticipate ("skylne", "suprah").
// It reads free text only; a structured model field without a make falls
// through to the inference tier instead.
type fuzzyMatcher struct{}

func (fuzzyMatcher) name() string { return "fuzzy" }

func (fuzzyMatcher) match(desc domain.VehicleDescriptor, snap *refdata.Snapshot) []Candidate {
	terms := tokenize(desc.FreeText)

	seen := make(map[string]bool)
	var out []Candidate
	add := func(v domain.CanonicalVehicle) {
		if seen[v.ID] {
			return
		}
		if desc.ModelYear != 0 && !v.InProduction(desc.ModelYear) {
			return
		}
		seen[v.ID] = true
		out = append(out, Candidate{Vehicle: v, Confidence: ConfidenceFuzzy, Tier: "fuzzy", specificity: specModelOnly})
	}

	for _, term := range terms {
		if len(term) < 3 {
			continue
		}
		for _, alias := range snap.AliasTerms() {
			if editDistance(term, alias) <= maxEditDistance(alias) {
				for _, v := range snap.AliasTargets(alias) {
					add(v)
				}
			}
		}
		for _, v := range snap.Vehicles() {
			if editDistance(term, strings.ToLower(v.Model)) <= maxEditDistance(v.Model) {
				add(v)
			}
		}
	}
	return out
}

// inferenceMatcher handles a bare model name with no make: the make is
// inferred from the catalog, at the lowest confidence band.
type inferenceMatcher struct{}

func (inferenceMatcher) name() string { return "inference" }

func (inferenceMatcher) match(desc domain.VehicleDescriptor, snap *refdata.Snapshot) []Candidate {
	if desc.Model == "" || desc.Make != "" {
		return nil
	}
	var out []Candidate
	for _, v := range snap.Vehicles() {
		if !strings.EqualFold(v.Model, desc.Model) {
			continue
		}
		if desc.ModelYear != 0 && !v.InProduction(desc.ModelYear) {
			continue
		}
		out = append(out, Candidate{Vehicle: v, Confidence: ConfidenceInferred, Tier: "inference", specificity: specModelOnly})
	}
	return out
}
