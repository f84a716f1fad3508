package models

import "fmt"

// BatchStatus is the overall outcome of a batch invocation.
type BatchStatus string

const (
	// BatchCompleted indicates at least one image in the batch succeeded
	BatchCompleted BatchStatus = "completed"
	// BatchFailed indicates every image in the batch failed
	BatchFailed BatchStatus = "failed"
)

// Batch is one invocation covering one or more images, persisted as a unit.
// BatchID is assigned by the history store on append.
type Batch struct {
	BatchID   int              `json:"batch_id"`
	CreatedAt string           `json:"created_at"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Summary   string           `json:"summary"`
	Status    BatchStatus      `json:"status"`
	Records   []AnalysisRecord `json:"records"`
}

// Finalize tallies the per-record outcomes into the batch counters,
// sets the overall status and builds the human-readable summary.
func (b *Batch) Finalize() {
	b.Total = len(b.Records)
	b.Succeeded = 0
	b.Failed = 0
	for i := range b.Records {
		if b.Records[i].Succeeded() {
			b.Succeeded++
		} else {
			b.Failed++
		}
	}

	if b.Succeeded > 0 {
		b.Status = BatchCompleted
		b.Summary = fmt.Sprintf("Successfully processed %d out of %d images", b.Succeeded, b.Total)
	} else {
		b.Status = BatchFailed
		b.Summary = fmt.Sprintf("Failed to process any images out of %d total", b.Total)
	}
}

// HistoryDocument is the persisted append-only store of batches.
type HistoryDocument struct {
	Batches              []Batch `json:"batches"`
	TotalImagesProcessed int     `json:"total_images_processed"`
	LastUpdated          string  `json:"last_updated"`
}
