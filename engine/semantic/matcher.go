package semantic

import (
	"context"
	"fmt"

	"github.com/PortsideHQ/portside-engine/engine/normalize"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Matcher adapts the vector store to the normalizer's fallback tier.
type Matcher struct {
	store    *VectorStore
	embed    Embedder
	topK     int
	minScore float32
}

// NewMatcher creates a Matcher. Hits scoring below minScore are discarded;
// a high-dimensional nearest neighbor is always "near" something, so an
// unfiltered search would resolve nonsense descriptions.
func NewMatcher(store *VectorStore, embed Embedder, topK int, minScore float32) *Matcher {
	return &Matcher{store: store, embed: embed, topK: topK, minScore: minScore}
}

var _ normalize.SemanticMatcher = (*Matcher)(nil)

// Match embeds the text and returns catalog hits above the score cutoff.
func (m *Matcher) Match(ctx context.Context, text string) ([]normalize.SemanticHit, error) {
	vec, err := m.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("semantic: embed query: %w", err)
	}
	results, err := m.store.Search(ctx, vec, m.topK)
	if err != nil {
		return nil, err
	}
	var hits []normalize.SemanticHit
	for _, r := range results {
		if r.Score < m.minScore {
			continue
		}
		hits = append(hits, normalize.SemanticHit{VehicleID: r.VehicleID, Score: r.Score})
	}
	return hits, nil
}

// DescribeVehicle renders the embedding text for a catalog entry. Kept in one
// place so seeding and any future re-embedding stay consistent.
func DescribeVehicle(make, model, chassis string, yearFrom, yearTo int, engine, drivetrain string) string {
	return fmt.Sprintf("%s %s chassis %s produced %d-%d engine %s drivetrain %s",
		make, model, chassis, yearFrom, yearTo, engine, drivetrain)
}
