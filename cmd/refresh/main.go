// Command refresh validates a dataset file and announces its version on the
// refresh bus. Running API instances rebuild their snapshot from the catalog
// when they see the announcement.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/PortsideHQ/portside-engine/engine/refdata"
	"github.com/PortsideHQ/portside-engine/pkg/natsutil"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "", "dataset YAML path (required)")
		natsURL     = flag.String("nats", nats.DefaultURL, "NATS server URL")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if *datasetPath == "" {
		logger.Error("missing -dataset flag")
		os.Exit(2)
	}

	// Validate before announcing: a malformed dataset must never reach the bus.
	snap, err := refdata.LoadDataset(*datasetPath)
	if err != nil {
		logger.Error("dataset rejected", "err", err)
		os.Exit(1)
	}

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		logger.Error("nats connect", "err", err)
		os.Exit(1)
	}
	defer nc.Close()

	ev := refdata.UpdateEvent{
		Version:       snap.Version(),
		AsOf:          snap.AsOf(),
		Jurisdictions: snap.Regulations(),
	}
	if err := natsutil.Publish(context.Background(), nc, refdata.RefreshSubject, ev); err != nil {
		logger.Error("publish announcement", "err", err)
		os.Exit(1)
	}
	if err := nc.Flush(); err != nil {
		logger.Error("flush", "err", err)
		os.Exit(1)
	}

	logger.Info("dataset announced",
		"version", ev.Version, "as_of", ev.AsOf,
		"jurisdictions", len(ev.Jurisdictions), "subject", refdata.RefreshSubject)
}
