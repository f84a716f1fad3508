package service

// ProcessOptions provides flexible configuration for batch processing
type ProcessOptions struct {
	// Prompt overrides the default analysis prompt when non-empty
	Prompt string

	// Upload behavior
	UploadFolder string
	SkipUpload   bool

	// Destination overrides the history file the batch is appended to
	Destination string

	// Performance options
	Parallel   bool
	MaxWorkers int
}

// DefaultProcessOptions returns default processing options
func DefaultProcessOptions() ProcessOptions {
	return ProcessOptions{
		UploadFolder: "photo-context",
		SkipUpload:   false,
		Parallel:     false,
		MaxWorkers:   0, // Use default CPU count
	}
}

// WithPrompt sets a custom analysis prompt
func (opts ProcessOptions) WithPrompt(prompt string) ProcessOptions {
	opts.Prompt = prompt
	return opts
}

// WithoutUpload disables asset hosting for the batch
func (opts ProcessOptions) WithoutUpload() ProcessOptions {
	opts.SkipUpload = true
	return opts
}

// WithParallel enables concurrent per-image analysis
func (opts ProcessOptions) WithParallel(maxWorkers int) ProcessOptions {
	opts.Parallel = true
	opts.MaxWorkers = maxWorkers
	return opts
}

// WithDestination targets a specific history file
func (opts ProcessOptions) WithDestination(name string) ProcessOptions {
	opts.Destination = name
	return opts
}
