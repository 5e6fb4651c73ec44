// Package catalog persists the canonical vehicle catalog and alias table in
// Neo4j. It is the durable side of the reference data: snapshots are built
// from it on refresh, and the seed command writes into it.
package catalog

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
)

// result is the minimal interface needed from a neo4j result.
type result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
}

// session is the minimal interface needed from a neo4j session.
type session interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

// Store provides catalog operations over a Neo4j database.
type Store struct {
	driver     neo4j.DriverWithContext
	newSession func(ctx context.Context) session // for testing
}

// NewStore creates a catalog store over a Neo4j driver.
func NewStore(driver neo4j.DriverWithContext) *Store {
	return &Store{driver: driver}
}

// Store satisfies the snapshot builder's catalog contract.
var _ refdata.CatalogSource = (*Store)(nil)

type sessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *sessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

func (s *Store) session(ctx context.Context) session {
	if s.newSession != nil {
		return s.newSession(ctx)
	}
	return &sessionAdapter{sess: s.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

// SaveVehicle creates or updates a Vehicle node.
func (s *Store) SaveVehicle(ctx context.Context, v domain.CanonicalVehicle) error {
	if v.ID == "" {
		return fmt.Errorf("catalog: vehicle without ID")
	}
	sess := s.session(ctx)
	defer sess.Close(ctx)

	_, err := sess.Run(ctx, `MERGE (v:Vehicle {id: $id}) SET v += $props`, map[string]any{
		"id":    v.ID,
		"props": vehicleToMap(v),
	})
	if err != nil {
		return fmt.Errorf("catalog: save vehicle %s: %w", v.ID, err)
	}
	return nil
}

// SaveAlias links a colloquial term to a vehicle. The vehicle node must
// already exist; an alias pointing at nothing would poison snapshot builds.
func (s *Store) SaveAlias(ctx context.Context, term, vehicleID string) error {
	term = refdata.NormalizeTerm(term)
	if term == "" || vehicleID == "" {
		return fmt.Errorf("catalog: empty alias term or vehicle ID")
	}
	sess := s.session(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (v:Vehicle {id: $vehicleID})
	           MERGE (a:Alias {term: $term})
	           MERGE (a)-[:REFERS_TO]->(v)
	           RETURN v.id`
	res, err := sess.Run(ctx, cypher, map[string]any{"term": term, "vehicleID": vehicleID})
	if err != nil {
		return fmt.Errorf("catalog: save alias %q: %w", term, err)
	}
	if !res.Next(ctx) {
		return fmt.Errorf("catalog: alias %q refers to unknown vehicle %s", term, vehicleID)
	}
	return nil
}

// Vehicles returns every vehicle in the catalog, ordered by ID.
func (s *Store) Vehicles(ctx context.Context) ([]domain.CanonicalVehicle, error) {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, `MATCH (v:Vehicle) RETURN v ORDER BY v.id`, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: list vehicles: %w", err)
	}
	var out []domain.CanonicalVehicle
	for res.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](res.Record(), "v")
		if err != nil {
			return nil, fmt.Errorf("catalog: decode vehicle: %w", err)
		}
		out = append(out, vehicleFromProps(node.Props))
	}
	return out, nil
}

// Aliases returns the full alias table as term -> vehicle IDs.
func (s *Store) Aliases(ctx context.Context) (map[string][]string, error) {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (a:Alias)-[:REFERS_TO]->(v:Vehicle)
	           RETURN a.term AS term, v.id AS id
	           ORDER BY term, id`
	res, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: list aliases: %w", err)
	}
	out := make(map[string][]string)
	for res.Next(ctx) {
		rec := res.Record()
		term, _ := rec.Get("term")
		id, _ := rec.Get("id")
		t, ok1 := term.(string)
		v, ok2 := id.(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("catalog: unexpected alias record %v", rec.Values)
		}
		out[t] = append(out[t], v)
	}
	return out, nil
}

// VehicleProps flattens a vehicle into Neo4j node properties. Exposed so the
// generic repository can persist the same node shape this store writes.
func VehicleProps(v domain.CanonicalVehicle) map[string]any {
	return vehicleToMap(v)
}

// VehicleFromRecord decodes a record holding a Vehicle node under key "n".
func VehicleFromRecord(rec *neo4j.Record) (domain.CanonicalVehicle, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return domain.CanonicalVehicle{}, fmt.Errorf("catalog: decode vehicle: %w", err)
	}
	return vehicleFromProps(node.Props), nil
}

func vehicleToMap(v domain.CanonicalVehicle) map[string]any {
	return map[string]any{
		"id":           v.ID,
		"make":         v.Make,
		"model":        v.Model,
		"chassis":      v.Chassis,
		"year_from":    int64(v.YearFrom),
		"year_to":      int64(v.YearTo),
		"engine":       v.Engine,
		"drivetrain":   v.Drivetrain,
		"manufacturer": v.Manufacturer,
	}
}

func vehicleFromProps(props map[string]any) domain.CanonicalVehicle {
	return domain.CanonicalVehicle{
		ID:           strProp(props, "id"),
		Make:         strProp(props, "make"),
		Model:        strProp(props, "model"),
		Chassis:      strProp(props, "chassis"),
		YearFrom:     intProp(props, "year_from"),
		YearTo:       intProp(props, "year_to"),
		Engine:       strProp(props, "engine"),
		Drivetrain:   strProp(props, "drivetrain"),
		Manufacturer: strProp(props, "manufacturer"),
	}
}

func strProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func intProp(props map[string]any, key string) int {
	if n, ok := props[key].(int64); ok {
		return int(n)
	}
	return 0
}
