package models

// StoredRecord is one flattened history entry: a record together with the
// batch and file it came from.
type StoredRecord struct {
	Record     AnalysisRecord `json:"record"`
	BatchID    int            `json:"batch_id"`
	SourceFile string         `json:"source_file"`
}

// SearchResult is one ranked hit from a history search.
type SearchResult struct {
	Record         AnalysisRecord `json:"record"`
	BatchID        int            `json:"batch_id"`
	SourceFile     string         `json:"source_file"`
	RelevanceScore float64        `json:"relevance_score"`

	// Reasoning is only populated by the AI ranking path.
	Reasoning string `json:"reasoning,omitempty"`

	// TokenErrorRate is a diagnostic filled in explain mode: the word error
	// rate between the query and the closest context window. It never
	// influences ordering.
	TokenErrorRate *float64 `json:"token_error_rate,omitempty"`
}

// UploadResult describes the outcome of pushing an image to the asset host.
type UploadResult struct {
	Success  bool     `json:"success"`
	URL      string   `json:"url,omitempty"`
	AssetID  string   `json:"asset_id,omitempty"`
	FileName string   `json:"file_name,omitempty"`
	FileType string   `json:"file_type,omitempty"`
	Size     int64    `json:"size,omitempty"`
	Folder   string   `json:"folder,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Error    string   `json:"error,omitempty"`
}
