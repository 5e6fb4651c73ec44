package refdata

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PortsideHQ/portside-engine/engine/domain"
)

// Dataset is the on-disk YAML form of a reference-data version, maintained by
// the out-of-band curation process.
type Dataset struct {
	Version       int                        `yaml:"version"`
	AsOf          time.Time                  `yaml:"as_of"`
	Jurisdictions []*domain.Regulation       `yaml:"jurisdictions"`
	Vehicles      []domain.CanonicalVehicle  `yaml:"vehicles"`
	Aliases       map[string][]string        `yaml:"aliases"` // term -> vehicle IDs
}

// RefreshSubject is the NATS subject dataset announcements are published on.
const RefreshSubject = "portside.refdata.updates"

// UpdateEvent announces a newly published dataset version on the refresh bus.
// Regulations travel in the event itself: the catalog only holds vehicles and
// aliases, so a rebuild without the announced regulation set would stamp the
// new version onto the previous version's fee schedules.
type UpdateEvent struct {
	Version       int                  `json:"version"`
	AsOf          time.Time            `json:"as_of"`
	Jurisdictions []*domain.Regulation `json:"jurisdictions"`
}

// ParseDataset decodes a YAML dataset and builds a validated snapshot.
func ParseDataset(data []byte) (*Snapshot, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("refdata: decode dataset: %w", err)
	}
	return ds.Snapshot()
}

// LoadDataset reads and parses a dataset file.
func LoadDataset(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: read dataset %s: %w", path, err)
	}
	snap, err := ParseDataset(data)
	if err != nil {
		return nil, fmt.Errorf("refdata: dataset %s: %w", path, err)
	}
	return snap, nil
}

// Snapshot builds a validated snapshot from the dataset.
func (ds *Dataset) Snapshot() (*Snapshot, error) {
	b := NewBuilder(ds.Version, ds.AsOf)
	for _, r := range ds.Jurisdictions {
		b.AddRegulation(r)
	}
	for _, v := range ds.Vehicles {
		b.AddVehicle(v)
	}
	for term, ids := range ds.Aliases {
		for _, id := range ids {
			b.AddAlias(term, id)
		}
	}
	return b.Build()
}

// CatalogSource is the read contract the external vehicle catalog satisfies.
// The Neo4j-backed store in engine/catalog implements it.
type CatalogSource interface {
	Vehicles(ctx context.Context) ([]domain.CanonicalVehicle, error)
	Aliases(ctx context.Context) (map[string][]string, error)
}

// FromCatalog builds a snapshot from the given regulations plus the vehicle
// table and alias map held in an external catalog.
func FromCatalog(ctx context.Context, src CatalogSource, regs []*domain.Regulation, version int, asOf time.Time) (*Snapshot, error) {
	vehicles, err := src.Vehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("refdata: load catalog vehicles: %w", err)
	}
	aliases, err := src.Aliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("refdata: load catalog aliases: %w", err)
	}

	b := NewBuilder(version, asOf)
	for _, r := range regs {
		b.AddRegulation(r)
	}
	for _, v := range vehicles {
		b.AddVehicle(v)
	}
	for term, ids := range aliases {
		for _, id := range ids {
			b.AddAlias(term, id)
		}
	}
	return b.Build()
}
