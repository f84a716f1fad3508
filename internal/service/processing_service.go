package service

import (
	"context"
	"sync"
	"time"

	apperrors "go-photo-context/internal/errors"
	"go-photo-context/internal/history"
	"go-photo-context/internal/hosting"
	"go-photo-context/internal/observer"
	"go-photo-context/internal/search"
	"go-photo-context/internal/vision"
	"go-photo-context/pkg/models"
)

// ImageInput is one image handed to the orchestrator for processing.
type ImageInput struct {
	Data        []byte
	DisplayName string
	SourcePath  string
}

// ProcessingService is the orchestration surface the transport layer calls.
// These are the only entry points exposed to front ends.
type ProcessingService interface {
	// ProcessBatch analyzes each image in input order, attempts hosting
	// independently per image and appends the finished batch to the history
	// store. A write failure is returned together with the processed batch so
	// the caller knows the work was done but not saved.
	ProcessBatch(ctx context.Context, images []ImageInput, opts ProcessOptions) (*models.Batch, string, error)

	// ProcessAndSave analyzes a single image and persists it as a standalone
	// document, bypassing the batch history.
	ProcessAndSave(ctx context.Context, image ImageInput, filename string, opts ProcessOptions) (*models.AnalysisRecord, string, error)

	// Search ranks the accumulated history against a query.
	Search(ctx context.Context, query string, opts search.Options) (*search.Result, error)

	// History returns every stored record, flattened across documents.
	History() ([]models.StoredRecord, error)

	// SaveSingle persists an already-built record as its own document.
	SaveSingle(record models.AnalysisRecord, filename string) (string, error)
}

// processingService implements ProcessingService
type processingService struct {
	analyzer   vision.ImageAnalyzer
	uploader   hosting.AssetUploader // nil disables hosting
	store      *history.Store
	searcher   *search.Searcher
	events     observer.Subject
	maxWorkers int
}

// NewProcessingService creates the orchestrator with all collaborators
// injected. maxWorkers bounds parallel analysis when a batch opts in.
func NewProcessingService(
	analyzer vision.ImageAnalyzer,
	uploader hosting.AssetUploader,
	store *history.Store,
	searcher *search.Searcher,
	events observer.Subject,
	maxWorkers int,
) ProcessingService {
	return &processingService{
		analyzer:   analyzer,
		uploader:   uploader,
		store:      store,
		searcher:   searcher,
		events:     events,
		maxWorkers: maxWorkers,
	}
}

// ProcessBatch runs the full pipeline for 1..N images. One image's analysis
// failure never stops processing of subsequent images; record order matches
// input order even when analysis runs in parallel.
func (s *processingService) ProcessBatch(ctx context.Context, images []ImageInput, opts ProcessOptions) (*models.Batch, string, error) {
	if len(images) == 0 {
		return nil, "", apperrors.NewValidationError("no images provided", nil)
	}

	s.notify(ctx, observer.ProcessingEvent{
		EventType: observer.BatchStarted,
		BatchSize: len(images),
		Success:   true,
	})

	batch := &models.Batch{
		CreatedAt: models.NowISO(),
		Records:   make([]models.AnalysisRecord, len(images)),
	}

	if opts.Parallel && len(images) > 1 {
		s.processParallel(ctx, images, opts, batch.Records)
	} else {
		for i := range images {
			batch.Records[i] = s.processOne(ctx, images[i], opts)
		}
	}

	batch.Finalize()

	path, err := s.store.Append(*batch, opts.Destination)
	if err != nil {
		s.notify(ctx, observer.ProcessingEvent{
			EventType:    observer.BatchPersistFailed,
			BatchSize:    batch.Total,
			ErrorMessage: err.Error(),
		})
		// The batch was processed; only persistence failed.
		return batch, "", err
	}

	s.notify(ctx, observer.ProcessingEvent{
		EventType: observer.BatchPersisted,
		BatchSize: batch.Total,
		Success:   true,
		Metadata:  map[string]interface{}{"path": path, "succeeded": batch.Succeeded, "failed": batch.Failed},
	})
	return batch, path, nil
}

// processParallel fans per-image work out over a worker pool. Each job writes
// its own index so completion order cannot reorder records.
func (s *processingService) processParallel(ctx context.Context, images []ImageInput, opts ProcessOptions, records []models.AnalysisRecord) {
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = s.maxWorkers
	}
	pool := NewWorkerPool(workers)
	pool.Start()
	defer pool.Close()

	var wg sync.WaitGroup
	for i := range images {
		i := i
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			records[i] = s.processOne(ctx, images[i], opts)
		})
	}
	wg.Wait()
}

// processOne analyzes a single image and independently attempts hosting. The
// returned record is failed only when the model call failed; upload problems
// leave the hosting fields empty without touching the status.
func (s *processingService) processOne(ctx context.Context, img ImageInput, opts ProcessOptions) models.AnalysisRecord {
	start := time.Now()
	payload := vision.NewImagePayload(img.Data)

	prompt := opts.Prompt
	if prompt == "" {
		prompt = vision.DefaultPrompt
	}

	record := models.AnalysisRecord{
		Timestamp:   models.NowISO(),
		SourcePath:  img.SourcePath,
		DisplayName: img.DisplayName,
		Dimensions:  payload.Dimensions,
		PromptUsed:  prompt,
	}

	text, err := s.analyzer.Analyze(ctx, payload, prompt)
	if err != nil {
		msg := upstreamMessage(err)
		record.Status = models.RecordFailed
		record.Error = msg
		record.Context = "Processing failed: " + msg
		s.notify(ctx, observer.ProcessingEvent{
			EventType:    observer.ImageAnalysisFailed,
			DisplayName:  img.DisplayName,
			Duration:     time.Since(start),
			ErrorMessage: msg,
		})
	} else {
		record.Status = models.RecordSuccess
		record.Context = text
		s.notify(ctx, observer.ProcessingEvent{
			EventType:   observer.ImageAnalyzed,
			DisplayName: img.DisplayName,
			Duration:    time.Since(start),
			Success:     true,
		})
	}

	s.uploadAsset(ctx, img, &record, opts)
	return record
}

// uploadAsset pushes the original bytes to the asset host and, on success,
// stamps the hosting fields onto the record.
func (s *processingService) uploadAsset(ctx context.Context, img ImageInput, record *models.AnalysisRecord, opts ProcessOptions) {
	if s.uploader == nil || opts.SkipUpload {
		return
	}

	hosted := hosting.UniqueFileName(img.DisplayName)
	result, err := s.uploader.Upload(ctx, img.Data, hosted, opts.UploadFolder)
	if err != nil {
		s.notify(ctx, observer.ProcessingEvent{
			EventType:    observer.AssetUploadFailed,
			DisplayName:  img.DisplayName,
			ErrorMessage: upstreamMessage(err),
		})
		return
	}

	record.HostedURL = result.URL
	record.HostedAssetID = result.AssetID
	s.notify(ctx, observer.ProcessingEvent{
		EventType:   observer.AssetUploaded,
		DisplayName: img.DisplayName,
		Success:     true,
		Metadata:    map[string]interface{}{"url": result.URL, "size": result.Size},
	})
}

// ProcessAndSave analyzes one image and writes it as a standalone document.
func (s *processingService) ProcessAndSave(ctx context.Context, image ImageInput, filename string, opts ProcessOptions) (*models.AnalysisRecord, string, error) {
	record := s.processOne(ctx, image, opts)
	path, err := s.store.SaveSingle(record, filename)
	if err != nil {
		return &record, "", err
	}
	return &record, path, nil
}

// Search ranks the accumulated history against a query.
func (s *processingService) Search(ctx context.Context, query string, opts search.Options) (*search.Result, error) {
	if query == "" {
		return nil, apperrors.NewValidationError("search query must not be empty", nil)
	}
	return s.searcher.Search(ctx, query, opts)
}

// History returns every stored record, flattened across documents.
func (s *processingService) History() ([]models.StoredRecord, error) {
	return s.store.ListAll()
}

// SaveSingle persists an already-built record as its own document.
func (s *processingService) SaveSingle(record models.AnalysisRecord, filename string) (string, error) {
	return s.store.SaveSingle(record, filename)
}

func (s *processingService) notify(ctx context.Context, event observer.ProcessingEvent) {
	if s.events != nil {
		s.events.Notify(ctx, event)
	}
}

// upstreamMessage unwraps the verbatim upstream text from structured errors.
func upstreamMessage(err error) string {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.Message
	}
	return err.Error()
}
