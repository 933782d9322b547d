// Package filler orchestrates the template fill pipeline: load a working
// copy, discover or synthesize placeholders, map collected data onto them,
// substitute, and promote the result to the generated-documents area.
//
// The pipeline degrades through fallback tiers rather than failing: only a
// missing template and storage I/O errors propagate to the caller. Everything
// else is reported through Result counts and warnings.
package filler

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rezonia/docgen/internal/mapper"
	"github.com/rezonia/docgen/internal/model"
	"github.com/rezonia/docgen/internal/placeholder"
	"github.com/rezonia/docgen/internal/storage"
)

// Completer is the synchronous completion contract shared by the synthesizer
// and the heuristic content generator.
type Completer = placeholder.Completer

// Filler is the fill-pipeline entry point.
type Filler struct {
	store     *storage.Store
	mapper    *mapper.Mapper
	synth     *placeholder.Synthesizer
	heuristic *Heuristic
}

// Option configures the filler
type Option func(*Filler)

// WithCompleter wires the classification/generation service. Without it,
// synthesis is skipped and heuristic dots spans fall back to data fields
// only.
func WithCompleter(c Completer) Option {
	return func(f *Filler) {
		f.synth = placeholder.NewSynthesizer(c)
		f.heuristic = NewHeuristic(c)
	}
}

// WithMapper overrides the data mapper.
func WithMapper(m *mapper.Mapper) Option {
	return func(f *Filler) {
		f.mapper = m
	}
}

// WithSynthesizer overrides the placeholder synthesizer.
func WithSynthesizer(s *placeholder.Synthesizer) Option {
	return func(f *Filler) {
		f.synth = s
	}
}

// WithHeuristic overrides the heuristic replacer.
func WithHeuristic(h *Heuristic) Option {
	return func(f *Filler) {
		f.heuristic = h
	}
}

// New creates a filler over the given store.
func New(store *storage.Store, opts ...Option) *Filler {
	f := &Filler{
		store:     store,
		mapper:    mapper.New(),
		synth:     placeholder.NewSynthesizer(nil),
		heuristic: NewHeuristic(nil),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fill fills the template identified by templateRef (stored URL or path)
// with the collected data and returns the generated document's path and
// fill metrics. The canonical template is never mutated.
func (f *Filler) Fill(ctx context.Context, templateRef string, data model.CollectedData) (*model.Result, error) {
	templatePath := f.store.Resolve(templateRef)

	// LOAD
	workPath, cleanup, err := f.store.WorkingCopy(templatePath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result := &model.Result{Method: model.MethodPlaceholder}

	// EXTRACT
	tokens, err := placeholder.Extract(workPath)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 {
		// SYNTHESIZE
		spans := f.synth.Synthesize(ctx, documentText(workPath))
		if len(spans) == 0 {
			// HEURISTIC_FALLBACK
			result.Method = model.MethodHeuristic
			if err := f.heuristic.Fill(ctx, workPath, data, result); err != nil {
				return nil, err
			}
			return f.finish(workPath, result)
		}

		// REWRITE_THEN_MAP: inject canonical tokens for the synthesized
		// spans, then re-extract so substitution works on real tokens.
		result.Method = model.MethodSynthesized
		injections := make(map[string]string, len(spans))
		for literal, key := range spans {
			injections[literal] = placeholder.Token(key)
		}
		outcome, err := substituteLiterals(workPath, injections)
		if err != nil {
			return nil, err
		}
		if outcome.raw {
			result.Method = model.MethodRaw
		}

		tokens, err = placeholder.Extract(workPath)
		if err != nil {
			return nil, err
		}
	}

	// MAP
	plan := f.mapper.Map(data, tokens)
	result.Failed += plan.Failed
	result.Skipped = plan.Skipped

	outcome, err := substituteLiterals(workPath, plan.Values)
	if err != nil {
		return nil, err
	}
	result.Replaced += outcome.replaced
	result.Failed += len(outcome.missing)
	if outcome.raw {
		result.Method = model.MethodRaw
	}
	for _, lit := range outcome.missing {
		perr := model.NewPlaceholderNotFoundError(lit)
		slog.Warn("placeholder substitution skipped", "error", perr)
		result.Warn(perr.Error())
	}

	return f.finish(workPath, result)
}

// finish promotes the fully written working copy into the generated area.
func (f *Filler) finish(workPath string, result *model.Result) (*model.Result, error) {
	outPath, err := f.store.GeneratedPath(".docx")
	if err != nil {
		return nil, err
	}
	if err := f.store.Promote(workPath, outPath); err != nil {
		return nil, err
	}

	result.OutputPath = outPath
	slog.Info("document generated",
		"output", outPath,
		"method", result.Method,
		"replaced", result.Replaced,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return result, nil
}

// ListPlaceholders inspects a template and returns its placeholders sorted
// by token.
func (f *Filler) ListPlaceholders(templateRef string) ([]model.Placeholder, error) {
	templatePath := f.store.Resolve(templateRef)

	tokens, err := placeholder.Extract(templatePath)
	if err != nil {
		return nil, err
	}

	out := make([]model.Placeholder, 0, len(tokens))
	for token, key := range tokens {
		out = append(out, model.Placeholder{Token: token, Key: key})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func sortedKeys(data model.CollectedData) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
