// Package refdata loads and serves the versioned jurisdiction-regulation and
// canonical-vehicle reference data. A Snapshot is immutable once built; the
// Store publishes whole snapshots atomically so concurrent readers never
// observe a partially updated record.
package refdata

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PortsideHQ/portside-engine/engine/domain"
)

// Snapshot is one immutable version of the full reference dataset.
type Snapshot struct {
	version int
	asOf    time.Time

	regulations map[string]*domain.Regulation
	vehicles    []domain.CanonicalVehicle
	byID        map[string]int
	byChassis   map[string][]int
	aliases     map[string][]string // normalized term -> vehicle IDs
}

// Version returns the dataset version.
func (s *Snapshot) Version() int { return s.version }

// AsOf returns the dataset publication timestamp, used for freshness scoring.
func (s *Snapshot) AsOf() time.Time { return s.asOf }

// Regulation looks up a jurisdiction by code. O(1).
func (s *Snapshot) Regulation(code string) (*domain.Regulation, bool) {
	r, ok := s.regulations[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// JurisdictionCodes returns all known jurisdiction codes.
func (s *Snapshot) JurisdictionCodes() []string {
	codes := make([]string, 0, len(s.regulations))
	for c := range s.regulations {
		codes = append(codes, c)
	}
	return codes
}

// Regulations returns every jurisdiction regulation, ordered by code.
func (s *Snapshot) Regulations() []*domain.Regulation {
	out := make([]*domain.Regulation, 0, len(s.regulations))
	for _, r := range s.regulations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Vehicles returns the canonical vehicle table.
func (s *Snapshot) Vehicles() []domain.CanonicalVehicle { return s.vehicles }

// VehicleByID looks up a canonical vehicle by its stable ID.
func (s *Snapshot) VehicleByID(id string) (domain.CanonicalVehicle, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.CanonicalVehicle{}, false
	}
	return s.vehicles[i], true
}

// VehiclesByChassis returns all vehicles carrying the given chassis code.
func (s *Snapshot) VehiclesByChassis(code string) []domain.CanonicalVehicle {
	idxs := s.byChassis[strings.ToUpper(strings.TrimSpace(code))]
	out := make([]domain.CanonicalVehicle, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.vehicles[i])
	}
	return out
}

// AliasTargets returns the vehicles a colloquial term maps to, if any.
func (s *Snapshot) AliasTargets(term string) []domain.CanonicalVehicle {
	ids := s.aliases[NormalizeTerm(term)]
	out := make([]domain.CanonicalVehicle, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.VehicleByID(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// AliasTerms returns every alias term in the snapshot, for fuzzy fallback.
func (s *Snapshot) AliasTerms() []string {
	terms := make([]string, 0, len(s.aliases))
	for t := range s.aliases {
		terms = append(terms, t)
	}
	return terms
}

// NormalizeTerm lowercases and collapses whitespace in a lookup term.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}

// Builder assembles a Snapshot. Build validates everything up front so a bad
// dataset never becomes visible to readers.
type Builder struct {
	version     int
	asOf        time.Time
	regulations []*domain.Regulation
	vehicles    []domain.CanonicalVehicle
	aliases     map[string][]string
}

// NewBuilder starts a snapshot at the given version and publication time.
func NewBuilder(version int, asOf time.Time) *Builder {
	return &Builder{version: version, asOf: asOf, aliases: make(map[string][]string)}
}

// AddRegulation queues a jurisdiction regulation.
func (b *Builder) AddRegulation(r *domain.Regulation) *Builder {
	b.regulations = append(b.regulations, r)
	return b
}

// AddVehicle queues a canonical vehicle record.
func (b *Builder) AddVehicle(v domain.CanonicalVehicle) *Builder {
	b.vehicles = append(b.vehicles, v)
	return b
}

// AddAlias maps a colloquial term to a vehicle ID.
func (b *Builder) AddAlias(term, vehicleID string) *Builder {
	key := NormalizeTerm(term)
	b.aliases[key] = append(b.aliases[key], vehicleID)
	return b
}

// Build validates and freezes the snapshot.
func (b *Builder) Build() (*Snapshot, error) {
	if b.asOf.IsZero() {
		return nil, fmt.Errorf("refdata: snapshot requires an as-of timestamp")
	}

	s := &Snapshot{
		version:     b.version,
		asOf:        b.asOf,
		regulations: make(map[string]*domain.Regulation, len(b.regulations)),
		vehicles:    b.vehicles,
		byID:        make(map[string]int, len(b.vehicles)),
		byChassis:   make(map[string][]int),
		aliases:     make(map[string][]string, len(b.aliases)),
	}

	for _, r := range b.regulations {
		if err := domain.ValidateRegulation(r); err != nil {
			return nil, fmt.Errorf("refdata: regulation %s: %w", r.Code, err)
		}
		code := strings.ToUpper(r.Code)
		if _, dup := s.regulations[code]; dup {
			return nil, fmt.Errorf("refdata: duplicate jurisdiction %s", code)
		}
		s.regulations[code] = r
	}

	for i, v := range b.vehicles {
		if v.ID == "" {
			return nil, fmt.Errorf("refdata: vehicle %s %s has no ID", v.Make, v.Model)
		}
		if _, dup := s.byID[v.ID]; dup {
			return nil, fmt.Errorf("refdata: duplicate vehicle ID %s", v.ID)
		}
		s.byID[v.ID] = i
		if v.Chassis != "" {
			key := strings.ToUpper(v.Chassis)
			s.byChassis[key] = append(s.byChassis[key], i)
		}
	}

	for term, ids := range b.aliases {
		for _, id := range ids {
			if _, ok := s.byID[id]; !ok {
				return nil, fmt.Errorf("refdata: alias %q points at unknown vehicle %s", term, id)
			}
		}
		s.aliases[term] = ids
	}

	return s, nil
}

// Store holds the currently published Snapshot. Reads are lock-free; a
// refresh swaps the whole pointer so readers always see a complete version.
type Store struct {
	cur atomic.Pointer[Snapshot]
}

// NewStore creates a Store publishing the given initial snapshot.
func NewStore(s *Snapshot) *Store {
	st := &Store{}
	st.cur.Store(s)
	return st
}

// Current returns the published snapshot.
func (st *Store) Current() *Snapshot { return st.cur.Load() }

// Swap publishes a new snapshot. A snapshot older than the current version is
// refused so an out-of-order refresh can never roll the dataset back.
func (st *Store) Swap(next *Snapshot) bool {
	for {
		cur := st.cur.Load()
		if cur != nil && next.version < cur.version {
			return false
		}
		if st.cur.CompareAndSwap(cur, next) {
			return true
		}
	}
}
