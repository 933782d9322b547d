package placeholder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rezonia/docgen/internal/llm"
	"github.com/rezonia/docgen/internal/model"
)

// DefaultMaxPromptRunes bounds the flattened-text prefix sent to the
// classification service, respecting its context limits.
const DefaultMaxPromptRunes = 8000

// Completer is the synchronous text-completion contract the synthesizer
// depends on.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, format llm.ResponseFormat) (string, error)
}

// Synthesizer asks the classification service to identify fillable spans in
// a template's flattened text and propose normalized keys. Used only when no
// native placeholders exist.
type Synthesizer struct {
	completer      Completer
	maxPromptRunes int
}

// SynthesizerOption configures the synthesizer
type SynthesizerOption func(*Synthesizer)

// WithMaxPromptRunes overrides the prompt size cap.
func WithMaxPromptRunes(n int) SynthesizerOption {
	return func(s *Synthesizer) {
		s.maxPromptRunes = n
	}
}

// NewSynthesizer creates a synthesizer backed by the given completer.
func NewSynthesizer(c Completer, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		completer:      c,
		maxPromptRunes: DefaultMaxPromptRunes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type synthesizedField struct {
	Text        string  `json:"text"`
	Key         string  `json:"key"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

type synthesisResponse struct {
	Fields []synthesizedField `json:"fields"`
}

// Synthesize classifies the flattened text and returns literal span text ->
// normalized key. A failed or unparseable service call yields an empty map,
// never an error: a single failed call degrades to the heuristic fill path
// instead of blocking document generation. No retries at this layer.
func (s *Synthesizer) Synthesize(ctx context.Context, flattenedText string) map[string]string {
	result := make(map[string]string)
	for _, span := range s.SynthesizeSpans(ctx, flattenedText) {
		if _, ok := result[span.Text]; !ok {
			result[span.Text] = span.Key
		}
	}
	return result
}

// SynthesizeSpans is like Synthesize but keeps the classifier's category and
// confidence for each span.
func (s *Synthesizer) SynthesizeSpans(ctx context.Context, flattenedText string) []model.FillableSpan {
	if s.completer == nil || flattenedText == "" {
		return nil
	}

	prompt := fmt.Sprintf(llm.UserPromptSpanClassification, truncateRunes(flattenedText, s.maxPromptRunes))

	raw, err := s.completer.Complete(ctx, llm.SystemPromptSpanClassifier, prompt, llm.FormatJSON)
	if err != nil {
		serr := model.NewClassificationServiceError("synthesize", "completion call failed", err)
		slog.Warn("placeholder synthesis degraded", "error", serr)
		return nil
	}

	var resp synthesisResponse
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &resp); err != nil {
		serr := model.NewClassificationServiceError("synthesize", "unparseable response", err)
		slog.Warn("placeholder synthesis degraded", "error", serr)
		return nil
	}

	var spans []model.FillableSpan
	for _, f := range resp.Fields {
		key := NormalizeKey(f.Key)
		if f.Text == "" || key == "" {
			continue
		}
		spans = append(spans, model.FillableSpan{
			Text:       f.Text,
			Key:        key,
			Category:   model.SpanCategory(f.Category),
			Confidence: f.Confidence,
		})
	}
	return spans
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
