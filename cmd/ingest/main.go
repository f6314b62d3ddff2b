// Package main adds or replaces one game and its companion guide in the
// catalog from a pair of JSON documents.
//
// Usage:
//
//	go run ./cmd/ingest --game out/game.json --guide out/guide.json
//	go run ./cmd/ingest --game out/game.json --guide out/guide.json --rebuild=false
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/blueroomhub/blueroom-builder/internal/catalog"
	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/di"
	"github.com/blueroomhub/blueroom-builder/internal/di/providers"
	"github.com/blueroomhub/blueroom-builder/internal/ingest"
	"github.com/blueroomhub/blueroom-builder/internal/logger"
	"github.com/blueroomhub/blueroom-builder/internal/site"
)

var (
	gamePath  = flag.String("game", "", "Path to the game JSON document")
	guidePath = flag.String("guide", "", "Path to the guide JSON document")
	rebuild   = flag.Bool("rebuild", true, "Rebuild the site after the upsert")
)

func main() {
	injector := di.NewContainer()

	if _, err := do.Invoke[*config.Config](injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	if *gamePath == "" || *guidePath == "" {
		log.Fatal("--game and --guide are required")
	}

	store := do.MustInvoke[*catalog.Store](injector)

	var rebuilder ingest.Rebuilder
	if *rebuild {
		builder, err := do.Invoke[*site.Builder](injector)
		if err != nil {
			log.Fatal("Failed to wire build pipeline", "error", err)
		}
		rebuilder = builder
	}

	ingestor := ingest.New(store, rebuilder, log.Logger)
	runID, err := ingestor.Run(context.Background(), &ingest.FileProvider{
		GamePath:  *gamePath,
		GuidePath: *guidePath,
	})
	if err != nil {
		log.Fatal("Ingest failed", "run_id", runID, "error", err)
	}

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
	if handle, err := do.Invoke[*providers.AnalyticsHandle](injector); err == nil {
		_ = handle.Shutdown()
	}
	if handle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		_ = handle.Shutdown()
	}
}
