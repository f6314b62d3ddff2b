// Package providers contains dependency injection providers for the site builder.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/blueroomhub/blueroom-builder/internal/analytics"
	"github.com/blueroomhub/blueroom-builder/internal/catalog"
	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/images"
	"github.com/blueroomhub/blueroom-builder/internal/ingest"
	"github.com/blueroomhub/blueroom-builder/internal/logger"
	"github.com/blueroomhub/blueroom-builder/internal/preview"
	"github.com/blueroomhub/blueroom-builder/internal/render"
	"github.com/blueroomhub/blueroom-builder/internal/search"
	"github.com/blueroomhub/blueroom-builder/internal/site"
	"github.com/blueroomhub/blueroom-builder/internal/validation"
	"github.com/blueroomhub/blueroom-builder/internal/watcher"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Blue Room site builder",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.Data.Dir,
		"output_dir", cfg.Output.Dir,
	)

	return log, nil
}

// ProvideValidator provides the struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCatalogStore provides the file-backed catalog store.
func ProvideCatalogStore(i do.Injector) (*catalog.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	v := do.MustInvoke[*validation.Validator](i)

	return catalog.New(cfg.Data.Dir, log.Logger, v), nil
}

// AnalyticsHandle wraps the analytics store with shutdown capability.
type AnalyticsHandle struct {
	*analytics.Store
}

// Shutdown implements do.Shutdownable.
func (h *AnalyticsHandle) Shutdown() error {
	return h.Close()
}

// ProvideAnalyticsStore provides the Badger-backed engagement counters.
func ProvideAnalyticsStore(i do.Injector) (*AnalyticsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := analytics.Open(cfg.Analytics.Path, log.Logger)
	if err != nil {
		return nil, err
	}
	return &AnalyticsHandle{Store: store}, nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.Open(cfg.Search.Path, log.Logger)
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{Index: index}, nil
}

// ProvideRenderer provides the page renderer.
func ProvideRenderer(i do.Injector) (*render.Renderer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return render.New(cfg.Site)
}

// ProvideImageProcessor provides the thumbnail processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(cfg.Images.SourceDir, cfg.Images.ThumbWidth, log.Logger), nil
}

// ProvideBuilder provides the site builder.
func ProvideBuilder(i do.Injector) (*site.Builder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	store := do.MustInvoke[*catalog.Store](i)
	counters := do.MustInvoke[*AnalyticsHandle](i)
	index := do.MustInvoke[*SearchIndexHandle](i)
	renderer := do.MustInvoke[*render.Renderer](i)
	thumbs := do.MustInvoke[*images.Processor](i)

	return site.NewBuilder(cfg, store, counters.Store, index.Index, renderer, thumbs, log.Logger), nil
}

// ProvideIngestor provides the catalog ingestor, wired to rebuild the site
// after each upsert.
func ProvideIngestor(i do.Injector) (*ingest.Ingestor, error) {
	store := do.MustInvoke[*catalog.Store](i)
	builder := do.MustInvoke[*site.Builder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return ingest.New(store, builder, log.Logger), nil
}

// WatcherHandle wraps the file watcher with shutdown capability.
type WatcherHandle struct {
	*watcher.Watcher
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	return h.Close()
}

// ProvideWatcher provides the data-dir watcher, wired to rebuild on change.
func ProvideWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	builder := do.MustInvoke[*site.Builder](i)

	w, err := watcher.New(cfg.Data.Dir, 0, func() {
		if err := builder.Rebuild(); err != nil {
			log.Error("rebuild after change failed", "error", err)
		}
	}, log.Logger)
	if err != nil {
		return nil, err
	}
	return &WatcherHandle{Watcher: w}, nil
}

// ProvidePreviewServer provides the local preview server.
func ProvidePreviewServer(i do.Injector) (*preview.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	index := do.MustInvoke[*SearchIndexHandle](i)
	counters := do.MustInvoke[*AnalyticsHandle](i)

	return preview.NewServer(cfg.Output.Dir, index.Index, counters.Store, log.Logger), nil
}
