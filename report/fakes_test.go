package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/krishkalaria12/remake/ai"
	"github.com/krishkalaria12/remake/models"
)

// fakeGenerator answers OCR calls by looking up the image bytes in ocr.
type fakeGenerator struct {
	mu        sync.Mutex
	ocr       map[string]string
	ocrErr    map[string]error
	report    string
	reportErr error
	ocrCalls  []ai.Image
	prompts   []string
	delay     map[string]time.Duration
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) ExtractText(ctx context.Context, instruction string, img ai.Image) (string, error) {
	key := string(img.Data)
	if d := f.delay[key]; d > 0 {
		time.Sleep(d)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ocrCalls = append(f.ocrCalls, img)
	if err := f.ocrErr[key]; err != nil {
		return "", err
	}
	return f.ocr[key], nil
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.reportErr != nil {
		return "", f.reportErr
	}
	return f.report, nil
}

type fakeStore struct {
	created []models.Report
	err     error
}

func (s *fakeStore) Create(ctx context.Context, r models.Report) (*models.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	r.ID = "generated-id"
	r.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.created = append(s.created, r)
	return &r, nil
}

func (s *fakeStore) ListByOwner(ctx context.Context, userID string) ([]models.Report, error) {
	out := []models.Report{}
	for _, r := range s.created {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")

func pngImage(index int, key string) Image {
	return Image{Index: index, Filename: key + ".png", MIMEType: "image/png", Data: []byte(key)}
}
