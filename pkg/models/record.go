package models

import "time"

// RecordStatus is the processing outcome for a single image.
type RecordStatus string

const (
	// RecordSuccess indicates the analysis call returned model output
	RecordSuccess RecordStatus = "success"
	// RecordFailed indicates the analysis call failed after the representation fallback
	RecordFailed RecordStatus = "failed"
)

// ImageDimensions describes the decoded size and format of an image.
type ImageDimensions struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// AnalysisRecord is the stored result (success or failure) for exactly one image.
// Timestamps are ISO-8601 strings rather than time.Time so documents written by
// earlier versions of the app, which omit the timezone offset, still decode.
type AnalysisRecord struct {
	Timestamp     string          `json:"timestamp"`
	SourcePath    string          `json:"source_path"`
	DisplayName   string          `json:"display_name"`
	Dimensions    ImageDimensions `json:"dimensions"`
	PromptUsed    string          `json:"prompt_used"`
	Context       string          `json:"context"`
	Status        RecordStatus    `json:"status"`
	Error         string          `json:"error,omitempty"`
	HostedURL     string          `json:"hosted_url,omitempty"`
	HostedAssetID string          `json:"hosted_asset_id,omitempty"`
}

// Succeeded reports whether the record holds genuine model output.
func (r *AnalysisRecord) Succeeded() bool {
	return r.Status == RecordSuccess
}

// NowISO returns the current time as an ISO-8601 string.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
