package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProcessingEvent represents one step in a batch's lifecycle
type ProcessingEvent struct {
	EventType    EventType              `json:"event_type"`
	Timestamp    time.Time              `json:"timestamp"`
	DisplayName  string                 `json:"display_name,omitempty"`
	BatchSize    int                    `json:"batch_size,omitempty"`
	Duration     time.Duration          `json:"duration,omitempty"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of processing event
type EventType string

const (
	// BatchStarted when a batch begins processing
	BatchStarted EventType = "batch_started"
	// ImageAnalyzed when the model call for one image succeeds
	ImageAnalyzed EventType = "image_analyzed"
	// ImageAnalysisFailed when the model call for one image fails
	ImageAnalysisFailed EventType = "image_analysis_failed"
	// AssetUploaded when the asset host accepted an image
	AssetUploaded EventType = "asset_uploaded"
	// AssetUploadFailed when the asset host rejected an image
	AssetUploadFailed EventType = "asset_upload_failed"
	// BatchPersisted when the batch was appended to the history store
	BatchPersisted EventType = "batch_persisted"
	// BatchPersistFailed when the history append failed
	BatchPersistFailed EventType = "batch_persist_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ProcessingEvent)
	ObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Notify(ctx context.Context, event ProcessingEvent)
}

// EventBus is a simple synchronous Subject implementation
type EventBus struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers an observer
func (b *EventBus) Subscribe(observer Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, observer)
}

// Notify delivers the event to every registered observer
func (b *EventBus) Notify(ctx context.Context, event ProcessingEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	b.mu.RLock()
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()

	for _, o := range observers {
		o.OnEvent(ctx, event)
	}
}

// LoggingObserver logs processing events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles processing events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ProcessingEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"success":    event.Success,
	}
	if event.DisplayName != "" {
		fields["display_name"] = event.DisplayName
	}
	if event.BatchSize > 0 {
		fields["batch_size"] = event.BatchSize
	}
	if event.Duration > 0 {
		fields["duration_ms"] = event.Duration.Milliseconds()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case BatchStarted:
		o.logger.WithFields(fields).Info("Batch processing started")
	case ImageAnalyzed:
		o.logger.WithFields(fields).Info("Image analyzed")
	case ImageAnalysisFailed:
		o.logger.WithFields(fields).Error("Image analysis failed")
	case AssetUploaded:
		o.logger.WithFields(fields).Debug("Image uploaded to asset host")
	case AssetUploadFailed:
		o.logger.WithFields(fields).Warn("Asset upload failed")
	case BatchPersisted:
		o.logger.WithFields(fields).Info("Batch persisted to history")
	case BatchPersistFailed:
		o.logger.WithFields(fields).Error("Batch could not be persisted")
	default:
		o.logger.WithFields(fields).Info("Processing event occurred")
	}
}

// ObserverName returns the observer name
func (o *LoggingObserver) ObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from processing events
type MetricsObserver struct {
	mu               sync.RWMutex
	batchesStarted   int64
	batchesPersisted int64
	imagesAnalyzed   int64
	imagesFailed     int64
	assetsUploaded   int64
	uploadsFailed    int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles processing events by updating counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event ProcessingEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch event.EventType {
	case BatchStarted:
		o.batchesStarted++
	case BatchPersisted:
		o.batchesPersisted++
	case ImageAnalyzed:
		o.imagesAnalyzed++
	case ImageAnalysisFailed:
		o.imagesFailed++
	case AssetUploaded:
		o.assetsUploaded++
	case AssetUploadFailed:
		o.uploadsFailed++
	}
}

// ObserverName returns the observer name
func (o *MetricsObserver) ObserverName() string {
	return "metrics_observer"
}

// Snapshot returns the current counter values
func (o *MetricsObserver) Snapshot() map[string]int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return map[string]int64{
		"batches_started":   o.batchesStarted,
		"batches_persisted": o.batchesPersisted,
		"images_analyzed":   o.imagesAnalyzed,
		"images_failed":     o.imagesFailed,
		"assets_uploaded":   o.assetsUploaded,
		"uploads_failed":    o.uploadsFailed,
	}
}
