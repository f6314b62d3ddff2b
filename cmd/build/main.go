// Package main provides the site build entry point.
//
// Usage:
//
//	go run ./cmd/build                      # one-shot build into the output dir
//	go run ./cmd/build --watch              # rebuild whenever the data dir changes
//	go run ./cmd/build --serve              # serve the output dir locally
//	go run ./cmd/build --watch --serve      # full dev loop
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/di"
	"github.com/blueroomhub/blueroom-builder/internal/di/providers"
	"github.com/blueroomhub/blueroom-builder/internal/logger"
	"github.com/blueroomhub/blueroom-builder/internal/preview"
	"github.com/blueroomhub/blueroom-builder/internal/site"
)

var (
	watchMode = flag.Bool("watch", false, "Rebuild whenever the data directory changes")
	serveMode = flag.Bool("serve", false, "Serve the output directory after building")
)

func main() {
	injector := di.NewContainer()

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	builder, err := do.Invoke[*site.Builder](injector)
	if err != nil {
		log.Fatal("Failed to wire build pipeline", "error", err)
	}

	if err := builder.Build(); err != nil {
		log.Fatal("Build failed", "error", err)
	}

	if *watchMode || *serveMode {
		runDevLoop(injector, cfg, log)
	}

	shutdown(injector, log)
}

// runDevLoop blocks running the watcher and/or preview server until a
// shutdown signal arrives.
func runDevLoop(injector do.Injector, cfg *config.Config, log *logger.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watchMode {
		handle, err := do.Invoke[*providers.WatcherHandle](injector)
		if err != nil {
			log.Fatal("Failed to start watcher", "error", err)
		}
		go func() {
			if err := handle.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error("Watcher stopped", "error", err)
			}
		}()
	}

	if *serveMode {
		server, err := do.Invoke[*preview.Server](injector)
		if err != nil {
			log.Fatal("Failed to start preview server", "error", err)
		}
		go func() {
			if err := server.ListenAndServe(ctx, cfg.Preview); err != nil && ctx.Err() == nil {
				log.Error("Preview server stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down...")
}

func shutdown(injector *do.RootScope, log *logger.Logger) {
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	if handle, err := do.Invoke[*providers.AnalyticsHandle](injector); err == nil {
		if err := handle.Shutdown(); err != nil {
			log.Error("Failed to close analytics store", "error", err)
		}
	}
	if handle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		if err := handle.Shutdown(); err != nil {
			log.Error("Failed to close search index", "error", err)
		}
	}
}
