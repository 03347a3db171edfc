package gateway

import (
	"context"
	"time"
	"unicode/utf8"

	"aigate-api/internal/metrics"
	"aigate-api/internal/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type FileResult struct {
	FileID         string    `json:"fileId"`
	Filename       string    `json:"filename"`
	Text           string    `json:"text"`
	Vector         []float64 `json:"vector,omitempty"`
	Dimensions     int       `json:"dimensions,omitempty"`
	CharacterCount int       `json:"characterCount"`
}

type BatchOutput struct {
	Results             []FileResult `json:"results"`
	TotalItems          int          `json:"totalItems"`
	TotalCreditsCharged uint64       `json:"totalCreditsCharged"`
}

// ConvertFiles extracts text from every file.
func (h *Handler) ConvertFiles(ctx context.Context, m *Meta, files []shared.DecodedFile) (*BatchOutput, error) {
	m.use(h.Providers.Extractor.Info())
	return h.runBatch(ctx, m, files, false)
}

// EmbedFiles extracts and embeds every file.
func (h *Handler) EmbedFiles(ctx context.Context, m *Meta, files []shared.DecodedFile) (*BatchOutput, error) {
	m.use(h.Providers.Extractor.Info())
	m.use(h.Providers.Embedder.Info())
	return h.runBatch(ctx, m, files, true)
}

// runBatch processes every item concurrently. The first failure is the
// outcome of the whole batch: nothing is reported and no result is returned.
// Siblings are not cancelled, their results are dropped.
func (h *Handler) runBatch(ctx context.Context, m *Meta, files []shared.DecodedFile, embed bool) (*BatchOutput, error) {
	results := make([]FileResult, len(files))

	g := new(errgroup.Group)
	for i, f := range files {
		g.Go(func() error {
			text, err := h.extract(ctx, m, f)
			if err != nil {
				return err
			}
			res := FileResult{
				FileID:         uuid.NewString(),
				Filename:       f.Filename,
				Text:           text,
				CharacterCount: utf8.RuneCountInString(text),
			}
			if embed {
				emb, err := h.embed(ctx, m, text)
				if err != nil {
					return err
				}
				res.Vector = emb.Vector
				res.Dimensions = emb.Dimensions
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.BatchItems.WithLabelValues(m.Charge.Endpoint).Observe(float64(len(files)))
	h.report(ctx, m)
	return &BatchOutput{
		Results:             results,
		TotalItems:          len(results),
		TotalCreditsCharged: m.Charge.Cost,
	}, nil
}

func (h *Handler) extract(ctx context.Context, m *Meta, f shared.DecodedFile) (string, error) {
	ex := h.Providers.Extractor
	start := time.Now()
	text, err := ex.Extract(ctx, f.Filename, f.Content)
	observe(m.Log, ex.Info(), start, err)
	return text, err
}
