package config

import (
	"image"
	"net/http"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/fetcher"
	"pdf-viewer/internal/renderer"
	"pdf-viewer/internal/service"
	"pdf-viewer/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config        *AppConfig
	Logger        domain.Logger
	Fetcher       domain.Fetcher
	Renderer      domain.Renderer
	ViewerService *service.ViewerService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return NewContainerWithConfig(NewConfig())
}

// NewContainerWithConfig wires the application around cfg
func NewContainerWithConfig(cfg *AppConfig) *Container {
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	httpFetcher := fetcher.NewHTTPFetcher(
		&http.Client{},
		cfg.GetDownloadDir(),
		cfg.GetMaxDownloadSize(),
		cfg.GetDownloadTimeout(),
		appLogger.Named("fetcher"),
	)

	// Storage sources are optional; without credentials storage:// is rejected.
	var storageFetcher domain.Fetcher
	if cfg.GetSupabaseURL() != "" && cfg.GetSupabaseKey() != "" {
		store, err := fetcher.NewSupabaseStore(cfg.GetSupabaseURL(), cfg.GetSupabaseKey(), appLogger)
		if err != nil {
			appLogger.Error("Failed to initialize Supabase storage; storage sources disabled", err)
		} else {
			storageFetcher = fetcher.NewStorageFetcher(store, cfg.GetDownloadDir(), cfg.GetMaxDownloadSize(), appLogger.Named("storage"))
		}
	}

	docFetcher := fetcher.NewMultiFetcher(fetcher.NewLocalFetcher(), httpFetcher, storageFetcher)
	pdfRenderer := renderer.NewFitzRenderer(cfg.GetRenderDPI(), appLogger.Named("renderer"))

	width, height := cfg.GetViewportSize()
	viewers := service.NewViewerService(pdfRenderer, docFetcher, image.Pt(width, height), appLogger.Named("viewer"),
		service.WithRenderMode(cfg.GetRenderMode()))

	return &Container{
		Config:        cfg,
		Logger:        appLogger,
		Fetcher:       docFetcher,
		Renderer:      pdfRenderer,
		ViewerService: viewers,
	}
}
