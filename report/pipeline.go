package report

import (
	"context"
	"fmt"

	"github.com/krishkalaria12/remake/ai"
	"github.com/krishkalaria12/remake/models"
	"github.com/krishkalaria12/remake/store"
	"go.uber.org/zap"
)

type Options struct {
	FailurePolicy  FailurePolicy
	OCRConcurrency int
	MaxDimension   int
}

// Pipeline turns a submission into a stored report:
// validate, OCR, assemble notes, build prompt, generate, persist.
type Pipeline struct {
	gen       ai.Generator
	extractor *Extractor
	store     store.ReportStore
	log       *zap.Logger
}

func NewPipeline(gen ai.Generator, reports store.ReportStore, opts Options, log *zap.Logger) *Pipeline {
	return &Pipeline{
		gen:       gen,
		extractor: NewExtractor(gen, opts.FailurePolicy, opts.OCRConcurrency, opts.MaxDimension, log),
		store:     reports,
		log:       log,
	}
}

func (p *Pipeline) Run(ctx context.Context, userID string, sub Submission) (*models.Report, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	sub.Style = NormalizeStyle(sub.Style)
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	log := p.log.With(zap.String("user_id", userID))
	log.Info("generating report",
		zap.String("style", sub.Style),
		zap.Int("images", len(sub.Images)),
		zap.String("provider", p.gen.Name()))

	snippets, err := p.extractor.Extract(ctx, sub.Images)
	if err != nil {
		return nil, err
	}

	notes := AssembleNotes(sub.Description, snippets)
	prompt := BuildPrompt(sub.Title, sub.Style, notes)
	log.Debug("prompt ready", zap.Int("snippets", len(snippets)), zap.Int("prompt_chars", len(prompt)))

	content, err := p.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	inputType := models.InputTypeText
	if len(snippets) > 0 {
		inputType = models.InputTypeTextImage
	}

	stored, err := p.store.Create(ctx, models.Report{
		Title:         sub.Title,
		Style:         sub.Style,
		InputType:     inputType,
		RawInput:      notes,
		ReportContent: content,
		UserID:        userID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	log.Info("report saved", zap.String("report_id", stored.ID), zap.String("input_type", inputType))
	return stored, nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (string, error) {
	content, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if content == "" {
		return "", fmt.Errorf("%w: %w", ErrUpstream, ai.ErrEmptyResponse)
	}
	return content, nil
}
