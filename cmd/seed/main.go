// Command seed loads a reference dataset into the backing stores: vehicles
// and aliases into the Neo4j catalog, and vehicle description embeddings into
// Qdrant for semantic matching. With no -dataset flag it seeds the built-in
// curated dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/PortsideHQ/portside-engine/engine/catalog"
	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
	"github.com/PortsideHQ/portside-engine/engine/semantic"
	"github.com/PortsideHQ/portside-engine/pkg/fn"
	"github.com/PortsideHQ/portside-engine/pkg/ollama"
)

const vectorDims = 768 // nomic-embed-text

func main() {
	var (
		datasetPath = flag.String("dataset", "", "dataset YAML path (empty uses the built-in seed)")
		neo4jURL    = flag.String("neo4j", "neo4j://localhost:7687", "Neo4j bolt URL")
		neo4jUser   = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass   = flag.String("neo4j-pass", "password", "Neo4j password")
		qdrantAddr  = flag.String("qdrant", "", "Qdrant gRPC address (empty skips embeddings)")
		collection  = flag.String("collection", "portside-vehicles", "Qdrant collection name")
		ollamaURL   = flag.String("ollama", "http://localhost:11434", "Ollama base URL")
		embedModel  = flag.String("model", "nomic-embed-text", "Ollama embedding model")
		workers     = flag.Int("workers", 4, "concurrent embedding workers")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var snap *refdata.Snapshot
	var err error
	if *datasetPath != "" {
		snap, err = refdata.LoadDataset(*datasetPath)
		if err != nil {
			logger.Error("load dataset", "err", err)
			os.Exit(1)
		}
	} else {
		snap = refdata.SeedSnapshot()
	}
	logger.Info("seeding dataset", "version", snap.Version(), "vehicles", len(snap.Vehicles()))

	driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
	if err != nil {
		logger.Error("neo4j driver", "err", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)

	store := catalog.NewStore(driver)
	if err := seedCatalog(ctx, store, snap); err != nil {
		logger.Error("seed catalog", "err", err)
		os.Exit(1)
	}
	logger.Info("catalog seeded", "vehicles", len(snap.Vehicles()), "alias_terms", len(snap.AliasTerms()))

	if *qdrantAddr == "" {
		logger.Info("no qdrant address, skipping embeddings")
		return
	}

	vectors, err := semantic.New(*qdrantAddr, *collection)
	if err != nil {
		logger.Error("qdrant connect", "err", err)
		os.Exit(1)
	}
	defer vectors.Close()

	embedder := ollama.NewEmbedClient(*ollamaURL, *embedModel)
	n, err := seedEmbeddings(ctx, vectors, embedder, snap.Vehicles(), *workers)
	if err != nil {
		logger.Error("seed embeddings", "err", err)
		os.Exit(1)
	}
	logger.Info("embeddings seeded", "points", n)
}

// seedCatalog writes every vehicle and alias with a retry around each write;
// a cold Neo4j container routinely refuses the first connections.
func seedCatalog(ctx context.Context, store *catalog.Store, snap *refdata.Snapshot) error {
	for _, v := range snap.Vehicles() {
		v := v
		r := fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[struct{}] {
			return fn.FromPair(struct{}{}, store.SaveVehicle(ctx, v))
		})
		if r.IsErr() {
			_, err := r.Unwrap()
			return fmt.Errorf("vehicle %s: %w", v.ID, err)
		}
	}
	for _, term := range snap.AliasTerms() {
		for _, v := range snap.AliasTargets(term) {
			term, id := term, v.ID
			r := fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[struct{}] {
				return fn.FromPair(struct{}{}, store.SaveAlias(ctx, term, id))
			})
			if r.IsErr() {
				_, err := r.Unwrap()
				return fmt.Errorf("alias %q: %w", term, err)
			}
		}
	}
	return nil
}

// seedEmbeddings embeds each vehicle's description and upserts the points in
// chunks. Returns the number of points written.
func seedEmbeddings(ctx context.Context, vectors *semantic.VectorStore, embedder *ollama.EmbedClient, vehicles []domain.CanonicalVehicle, workers int) (int, error) {
	if err := vectors.EnsureCollection(ctx, vectorDims); err != nil {
		return 0, err
	}

	embedCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	results := fn.ParMapResult(vehicles, workers, func(v domain.CanonicalVehicle) fn.Result[semantic.VehiclePoint] {
		text := semantic.DescribeVehicle(v.Make, v.Model, v.Chassis, v.YearFrom, v.YearTo, v.Engine, v.Drivetrain)
		return fn.Retry(embedCtx, fn.DefaultRetry, func(ctx context.Context) fn.Result[semantic.VehiclePoint] {
			emb, err := embedder.Embed(ctx, text)
			if err != nil {
				return fn.Err[semantic.VehiclePoint](fmt.Errorf("embed %s: %w", v.ID, err))
			}
			return fn.Ok(semantic.VehiclePoint{VehicleID: v.ID, Text: text, Embedding: emb})
		})
	})

	points := fn.Collect(results)
	if points.IsErr() {
		_, err := points.Unwrap()
		return 0, err
	}
	all, _ := points.Unwrap()

	written := 0
	for _, chunk := range fn.Chunk(all, 32) {
		if err := vectors.Upsert(ctx, chunk); err != nil {
			return written, err
		}
		written += len(chunk)
	}
	return written, nil
}
