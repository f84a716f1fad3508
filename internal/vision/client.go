package vision

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"go-photo-context/pkg/models"
)

// ImageAnalyzer sends prompts to the remote multimodal model and returns its
// free-text answer. Analyze attaches an image; Generate is text-only and is
// used for ranking prompts.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, payload ImagePayload, prompt string) (string, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImagePayload carries both wire representations of one image: a normalized
// PNG re-encode of the decoded pixels, and the raw bytes exactly as received.
// The model call tries the normalized form first and falls back to the raw
// form; models that reject one representation may accept the other.
type ImagePayload struct {
	Raw        []byte
	RawMIME    string
	PNG        []byte
	Dimensions models.ImageDimensions
}

// NewImagePayload inspects raw image bytes, recording dimensions and building
// the normalized PNG representation. Undecodable input still yields a usable
// payload: the raw bytes are kept and dimensions report format "Unknown".
func NewImagePayload(raw []byte) ImagePayload {
	p := ImagePayload{
		Raw:        raw,
		RawMIME:    http.DetectContentType(raw),
		Dimensions: models.ImageDimensions{Format: "Unknown"},
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return p
	}
	p.RawMIME = "image/" + format
	p.Dimensions = models.ImageDimensions{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: strings.ToUpper(format),
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return p
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return p
	}
	p.PNG = buf.Bytes()
	return p
}

// DefaultPrompt is the analysis prompt used when the caller supplies none.
const DefaultPrompt = `Dynamic Universal Image Analysis Prompt

System Role:
You are an advanced multimodal AI trained to perform exhaustive image analysis with maximum depth, precision, and creativity. Your job is not just to describe, but to extract, interpret, cross-reference, and contextualize every possible detail from an image.

Analyze the input image step by step and provide the most comprehensive extraction possible. Follow this layered approach:

1. Raw Text Extraction (OCR++)
2. Object & Scene Recognition
3. People & Identity Clues
4. Event / Situation Context
5. Brand / Logo / Product Detection
6. Colors, Style & Aesthetic
7. Internet / Cultural Cross-Reference
8. Metadata & Hidden Clues
9. Contextual Reasoning
10. Rich Human-Friendly Summary

Please be comprehensive and provide as much detail as possible.`
