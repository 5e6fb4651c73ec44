package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
	"github.com/PortsideHQ/portside-engine/pkg/metrics"
)

type fakeCatalog struct {
	vehicles []domain.CanonicalVehicle
	aliases  map[string][]string
	err      error
	calls    int
}

func (f *fakeCatalog) Vehicles(context.Context) ([]domain.CanonicalVehicle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vehicles, nil
}

func (f *fakeCatalog) Aliases(context.Context) (map[string][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.aliases, nil
}

func newTestRefresher(t *testing.T, src refdata.CatalogSource) (*refresher, *refdata.Store) {
	t.Helper()
	store := refdata.NewStore(refdata.SeedSnapshot())
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	return newRefresher(store, src, metrics.New(), logger), store
}

// v2Event announces version 2 carrying the current regulation set, optionally
// reshaped by mutate.
func v2Event(t *testing.T, store *refdata.Store, mutate func(map[string]*domain.Regulation)) refdata.UpdateEvent {
	t.Helper()
	byCode := make(map[string]*domain.Regulation)
	var regs []*domain.Regulation
	for _, r := range store.Current().Regulations() {
		cp := *r
		byCode[cp.Code] = &cp
		regs = append(regs, &cp)
	}
	if mutate != nil {
		mutate(byCode)
	}
	return refdata.UpdateEvent{
		Version:       2,
		AsOf:          time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Jurisdictions: regs,
	}
}

func TestRefresher_SwapsOnNewVersion(t *testing.T) {
	src := &fakeCatalog{
		vehicles: []domain.CanonicalVehicle{
			{ID: "toyota-supra-jza80", Make: "Toyota", Model: "Supra", Chassis: "JZA80", YearFrom: 1993, YearTo: 2002},
		},
		aliases: map[string][]string{"supra": {"toyota-supra-jza80"}},
	}
	r, store := newTestRefresher(t, src)

	r.handle(context.Background(), v2Event(t, store, nil))

	snap := store.Current()
	if snap.Version() != 2 {
		t.Fatalf("version = %d", snap.Version())
	}
	if len(snap.Vehicles()) != 1 {
		t.Errorf("vehicles = %d", len(snap.Vehicles()))
	}
	if _, ok := snap.Regulation("AUS"); !ok {
		t.Error("AUS regulation missing after refresh")
	}
	if r.swaps.Value() != 1 {
		t.Errorf("swaps = %d", r.swaps.Value())
	}
	if r.version.Value() != 2 {
		t.Errorf("version gauge = %d", r.version.Value())
	}
}

func TestRefresher_AppliesAnnouncedRegulations(t *testing.T) {
	src := &fakeCatalog{}
	r, store := newTestRefresher(t, src)

	before, ok := store.Current().Regulation("AUS")
	if !ok {
		t.Fatal("seed has no AUS regulation")
	}
	updated := before.DutyRateBps + 300

	ev := v2Event(t, store, func(byCode map[string]*domain.Regulation) {
		byCode["AUS"].DutyRateBps = updated
	})
	r.handle(context.Background(), ev)

	snap := store.Current()
	if snap.Version() != 2 {
		t.Fatalf("version = %d", snap.Version())
	}
	got, _ := snap.Regulation("AUS")
	if got.DutyRateBps != updated {
		t.Fatalf("AUS duty = %d bps, version %d still serves the old fee schedule",
			got.DutyRateBps, snap.Version())
	}
}

func TestRefresher_RefusesWithoutRegulations(t *testing.T) {
	src := &fakeCatalog{}
	r, store := newTestRefresher(t, src)

	r.handle(context.Background(), refdata.UpdateEvent{Version: 2, AsOf: time.Now()})

	if src.calls != 0 {
		t.Error("catalog read for an announcement without regulations")
	}
	if store.Current().Version() != 1 {
		t.Errorf("version = %d, swap should have been refused", store.Current().Version())
	}
	if r.failures.Value() != 1 {
		t.Errorf("failures = %d", r.failures.Value())
	}
}

func TestRefresher_IgnoresStaleAnnouncement(t *testing.T) {
	src := &fakeCatalog{}
	r, store := newTestRefresher(t, src)

	ev := v2Event(t, store, nil)
	ev.Version = 1
	r.handle(context.Background(), ev)

	if src.calls != 0 {
		t.Error("catalog read for a stale announcement")
	}
	if store.Current().Version() != 1 {
		t.Errorf("version = %d", store.Current().Version())
	}
}

func TestRefresher_KeepsSnapshotOnFailure(t *testing.T) {
	src := &fakeCatalog{err: errors.New("neo4j down")}
	r, store := newTestRefresher(t, src)

	r.handle(context.Background(), v2Event(t, store, nil))

	if store.Current().Version() != 1 {
		t.Errorf("version = %d, previous snapshot not kept", store.Current().Version())
	}
	if r.failures.Value() != 1 {
		t.Errorf("failures = %d", r.failures.Value())
	}
}
