package container

import (
	"fmt"
	"net/http"

	"go-photo-context/internal/config"
	"go-photo-context/internal/history"
	"go-photo-context/internal/hosting"
	"go-photo-context/internal/logger"
	"go-photo-context/internal/observer"
	"go-photo-context/internal/search"
	"go-photo-context/internal/service"
	"go-photo-context/internal/storage"
	"go-photo-context/internal/transport"
	"go-photo-context/internal/vision"
)

// Container holds all application dependencies. Every client is constructed
// here and injected; nothing reaches for ambient singletons.
type Container struct {
	config   *config.Config
	analyzer vision.ImageAnalyzer
	uploader hosting.AssetUploader
	store    *history.Store
	searcher *search.Searcher
	service  service.ProcessingService
	metrics  *observer.MetricsObserver
	handler  http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	analyzer := vision.NewGeminiClient(vision.GeminiConfig{
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		APIKey:  cfg.GeminiAPIKey,
		Timeout: cfg.AnalysisTimeout,
	})

	uploader, err := hosting.NewUploaderFactory(cfg).CreateUploader(cfg.AssetHost)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset uploader: %w", err)
	}

	store, err := history.NewStore(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	searcher := search.NewSearcher(store, analyzer)

	events := observer.NewEventBus()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	svc := service.NewProcessingService(analyzer, uploader, store, searcher, events, cfg.MaxWorkers)

	fetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxRequestBodySize)
	handler := transport.NewHandler(svc, fetcher, cfg)

	return &Container{
		config:   cfg,
		analyzer: analyzer,
		uploader: uploader,
		store:    store,
		searcher: searcher,
		service:  svc,
		metrics:  metrics,
		handler:  handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the orchestration service
func (c *Container) Service() service.ProcessingService {
	return c.service
}

// Metrics returns the metrics observer
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
