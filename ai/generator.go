// Package ai wraps the text-generation services used for OCR and report
// synthesis behind a single interface.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
)

var ErrEmptyResponse = errors.New("empty response from model")

// Image is an inline image payload with its declared mime type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Generator is an external generation service.
type Generator interface {
	// ExtractText sends an instruction together with one image and returns
	// the model's text answer as-is.
	ExtractText(ctx context.Context, instruction string, img Image) (string, error)
	// Generate sends a text-only prompt and returns the model's text answer as-is.
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

func makeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
