// Package normalize resolves raw vehicle descriptors to canonical catalog
// records through an ordered ladder of matcher tiers, each with its own
// confidence band. The normalizer is total: it always returns at least one
// candidate, falling back to an explicit unresolved marker.
package normalize

import (
	"context"
	"log/slog"
	"sort"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
)

// Candidate is one possible resolution of a descriptor.
type Candidate struct {
	Vehicle    domain.CanonicalVehicle `json:"vehicle"`
	Confidence int                     `json:"confidence"` // 0–100
	Tier       string                  `json:"tier"`
	Unresolved bool                    `json:"unresolved,omitempty"`

	specificity int
	hits        int // distinct terms corroborating an alias match
}

// SemanticHit is a vector-search result from an external semantic matcher.
type SemanticHit struct {
	VehicleID string
	Score     float32 // cosine similarity, 0–1
}

// SemanticMatcher is an optional last-resort tier backed by a vector store.
type SemanticMatcher interface {
	Match(ctx context.Context, text string) ([]SemanticHit, error)
}

// Normalizer resolves descriptors against a reference snapshot.
type Normalizer struct {
	tiers    []matcher
	semantic SemanticMatcher
	logger   *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSemanticMatcher attaches a vector-backed fallback tier.
func WithSemanticMatcher(m SemanticMatcher) Option {
	return func(n *Normalizer) { n.semantic = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

// New creates a Normalizer with the standard tier ladder.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		tiers: []matcher{
			identityMatcher{},
			makeModelMatcher{},
			aliasMatcher{},
			fuzzyMatcher{},
			inferenceMatcher{},
		},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize resolves a descriptor to an ordered, never-empty candidate list.
// Tiers are tried in ladder order; the first tier that produces candidates
// wins, so a chassis identity is never diluted by weaker text matches.
// Equally strong candidates are all returned so the caller can disambiguate.
func (n *Normalizer) Normalize(ctx context.Context, desc domain.VehicleDescriptor, snap *refdata.Snapshot) []Candidate {
	for _, tier := range n.tiers {
		if cands := tier.match(desc, snap); len(cands) > 0 {
			sortCandidates(cands)
			return cands
		}
	}

	if n.semantic != nil && desc.FreeText != "" {
		if cands := n.semanticMatch(ctx, desc, snap); len(cands) > 0 {
			sortCandidates(cands)
			return cands
		}
	}

	return []Candidate{Unresolved()}
}

// Unresolved is the explicit zero-confidence marker returned when no tier
// produced a candidate. Downstream stages treat it as an undetermined
// classification, never as an error.
func Unresolved() Candidate {
	return Candidate{Confidence: 0, Tier: "unresolved", Unresolved: true}
}

func (n *Normalizer) semanticMatch(ctx context.Context, desc domain.VehicleDescriptor, snap *refdata.Snapshot) []Candidate {
	hits, err := n.semantic.Match(ctx, desc.FreeText)
	if err != nil {
		// A vector-store outage degrades to the unresolved marker.
		n.logger.Warn("semantic matcher unavailable", "err", err)
		return nil
	}
	var out []Candidate
	for _, h := range hits {
		v, ok := snap.VehicleByID(h.VehicleID)
		if !ok {
			continue
		}
		if desc.ModelYear != 0 && !v.InProduction(desc.ModelYear) {
			continue
		}
		out = append(out, Candidate{
			Vehicle:     v,
			Confidence:  semanticConfidence(h.Score),
			Tier:        "semantic",
			specificity: specModelOnly,
		})
	}
	return out
}

// semanticConfidence maps a cosine score into the fuzzy/inferred band: the
// semantic tier can never outrank a deterministic text match.
func semanticConfidence(score float32) int {
	c := int(score * float32(ConfidenceFuzzy))
	if c > ConfidenceFuzzy {
		c = ConfidenceFuzzy
	}
	if c < ConfidenceInferred {
		c = ConfidenceInferred
	}
	return c
}

// sortCandidates orders by confidence, then specificity, then corroborating
// term count, then stable ID so identical inputs always produce
// byte-identical output.
func sortCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Confidence != cands[j].Confidence {
			return cands[i].Confidence > cands[j].Confidence
		}
		if cands[i].specificity != cands[j].specificity {
			return cands[i].specificity > cands[j].specificity
		}
		if cands[i].hits != cands[j].hits {
			return cands[i].hits > cands[j].hits
		}
		return cands[i].Vehicle.ID < cands[j].Vehicle.ID
	})
}
