package service

import "testing"

func TestDefaultProcessOptions(t *testing.T) {
	opts := DefaultProcessOptions()

	if opts.Prompt != "" {
		t.Errorf("Expected no prompt override by default, got %q", opts.Prompt)
	}
	if opts.UploadFolder != "photo-context" {
		t.Errorf("Expected default upload folder, got %q", opts.UploadFolder)
	}
	if opts.SkipUpload {
		t.Error("Expected upload enabled by default")
	}
	if opts.Parallel {
		t.Error("Expected sequential processing by default")
	}
}

func TestProcessOptions_Builders(t *testing.T) {
	opts := DefaultProcessOptions().
		WithPrompt("Describe the weather.").
		WithParallel(8).
		WithDestination("vacation").
		WithoutUpload()

	if opts.Prompt != "Describe the weather." {
		t.Errorf("Expected prompt set, got %q", opts.Prompt)
	}
	if !opts.Parallel || opts.MaxWorkers != 8 {
		t.Errorf("Expected parallel with 8 workers, got %v/%d", opts.Parallel, opts.MaxWorkers)
	}
	if opts.Destination != "vacation" {
		t.Errorf("Expected destination set, got %q", opts.Destination)
	}
	if !opts.SkipUpload {
		t.Error("Expected upload skipped")
	}
}

func TestProcessOptions_BuildersDoNotMutateReceiver(t *testing.T) {
	base := DefaultProcessOptions()
	_ = base.WithPrompt("changed")

	if base.Prompt != "" {
		t.Errorf("Expected value receiver to leave the base untouched, got %q", base.Prompt)
	}
}
