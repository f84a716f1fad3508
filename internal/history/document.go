package history

import (
	"encoding/json"

	"go-photo-context/pkg/models"
)

// documentKind classifies an on-disk JSON document once, at load time.
// All business logic runs against the canonical in-memory form.
type documentKind int

const (
	// kindCanonical is the current shape: a HistoryDocument with a batches array.
	kindCanonical documentKind = iota
	// kindLegacy is the older shape: a single batch's fields at the top level,
	// with no batches wrapper.
	kindLegacy
	// kindSingle is a standalone document holding one AnalysisRecord.
	kindSingle
	// kindUnrecognized is valid JSON matching none of the known shapes. It is
	// skipped on read and replaced with a fresh document on the next write to
	// that name, never merged.
	kindUnrecognized
)

// classifyDocument decodes raw JSON into one of the known document shapes and
// normalizes batch-bearing shapes to a canonical HistoryDocument. The error
// is non-nil only when the input is not valid JSON.
func classifyDocument(data []byte) (models.HistoryDocument, models.AnalysisRecord, documentKind, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return models.HistoryDocument{}, models.AnalysisRecord{}, kindUnrecognized, err
	}

	if raw, ok := probe["batches"]; ok {
		var batches []models.Batch
		if err := json.Unmarshal(raw, &batches); err == nil {
			var doc models.HistoryDocument
			if err := json.Unmarshal(data, &doc); err == nil {
				return doc, models.AnalysisRecord{}, kindCanonical, nil
			}
		}
		return models.HistoryDocument{}, models.AnalysisRecord{}, kindUnrecognized, nil
	}

	if raw, ok := probe["records"]; ok {
		var records []models.AnalysisRecord
		if err := json.Unmarshal(raw, &records); err == nil {
			var batch models.Batch
			if err := json.Unmarshal(data, &batch); err == nil {
				return upgradeLegacy(batch), models.AnalysisRecord{}, kindLegacy, nil
			}
		}
		return models.HistoryDocument{}, models.AnalysisRecord{}, kindUnrecognized, nil
	}

	if _, ok := probe["context"]; ok {
		if _, ok := probe["status"]; ok {
			var record models.AnalysisRecord
			if err := json.Unmarshal(data, &record); err == nil {
				return models.HistoryDocument{}, record, kindSingle, nil
			}
		}
	}

	return models.HistoryDocument{}, models.AnalysisRecord{}, kindUnrecognized, nil
}

// upgradeLegacy wraps a top-level legacy batch into a canonical document.
func upgradeLegacy(batch models.Batch) models.HistoryDocument {
	if batch.BatchID <= 0 {
		batch.BatchID = 1
	}
	return models.HistoryDocument{
		Batches:              []models.Batch{batch},
		TotalImagesProcessed: batch.Total,
		LastUpdated:          batch.CreatedAt,
	}
}

// recomputeTotals re-derives total_images_processed from the batches so the
// document invariant holds no matter what shape the input arrived in.
func recomputeTotals(doc *models.HistoryDocument) {
	total := 0
	for i := range doc.Batches {
		total += doc.Batches[i].Total
	}
	doc.TotalImagesProcessed = total
}
