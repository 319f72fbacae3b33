package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/krishkalaria12/remake/ai"
	"github.com/krishkalaria12/remake/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const OCRInstruction = "You are an OCR engine. Read all visible text from this image and return ONLY the raw text (no comments or extra formatting)."

// FailurePolicy decides what a failed OCR call does to the request.
type FailurePolicy string

const (
	// AbortOnFailure fails the whole request on the first OCR error.
	AbortOnFailure FailurePolicy = "abort"
	// SkipOnFailure drops the image and keeps going.
	SkipOnFailure FailurePolicy = "skip"
)

type Extractor struct {
	gen          ai.Generator
	policy       FailurePolicy
	concurrency  int
	maxDimension int
	log          *zap.Logger
}

func NewExtractor(gen ai.Generator, policy FailurePolicy, concurrency, maxDimension int, log *zap.Logger) *Extractor {
	if concurrency < 1 {
		concurrency = 1
	}
	if policy == "" {
		policy = AbortOnFailure
	}
	return &Extractor{
		gen:          gen,
		policy:       policy,
		concurrency:  concurrency,
		maxDimension: maxDimension,
		log:          log,
	}
}

// Extract returns the non-empty trimmed text of each image, in submission order.
func (e *Extractor) Extract(ctx context.Context, images []Image) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}

	texts := make([]string, len(images))
	if e.concurrency == 1 || len(images) == 1 {
		for i, img := range images {
			text, err := e.read(ctx, img)
			if err != nil {
				return nil, err
			}
			texts[i] = text
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for i, img := range images {
			g.Go(func() error {
				text, err := e.read(gctx, img)
				if err != nil {
					return err
				}
				texts[i] = text
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var snippets []string
	for _, text := range texts {
		if text != "" {
			snippets = append(snippets, text)
		}
	}
	return snippets, nil
}

// read runs OCR on one image. Under SkipOnFailure it never returns an error.
func (e *Extractor) read(ctx context.Context, img Image) (string, error) {
	data, mime, resized := imaging.Fit(img.Data, img.MIMEType, e.maxDimension)
	if resized {
		e.log.Debug("downscaled image for OCR",
			zap.Int("image", img.Index+1),
			zap.Int("original_bytes", len(img.Data)),
			zap.Int("bytes", len(data)))
	}

	raw, err := e.gen.ExtractText(ctx, OCRInstruction, ai.Image{Data: data, MIMEType: mime})
	if err != nil {
		if e.policy == SkipOnFailure {
			e.log.Warn("OCR failed, skipping image", zap.Int("image", img.Index+1), zap.Error(err))
			return "", nil
		}
		return "", fmt.Errorf("%w: ocr image #%d: %w", ErrUpstream, img.Index+1, err)
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		e.log.Info("no text extracted from image", zap.Int("image", img.Index+1))
	} else {
		e.log.Info("extracted text from image", zap.Int("image", img.Index+1), zap.Int("chars", len(text)))
	}
	return text, nil
}
