// Package di provides dependency injection configuration for the site builder.
package di

import (
	"github.com/samber/do/v2"

	"github.com/blueroomhub/blueroom-builder/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Catalog and signals
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideCatalogStore)
	do.Provide(injector, providers.ProvideAnalyticsStore)

	// Build pipeline
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideImageProcessor)
	do.Provide(injector, providers.ProvideBuilder)
	do.Provide(injector, providers.ProvideIngestor)

	// Dev loop
	do.Provide(injector, providers.ProvideWatcher)
	do.Provide(injector, providers.ProvidePreviewServer)

	return injector
}
