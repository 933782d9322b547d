// Package model defines the shared types of the document-fill pipeline:
// placeholders, fillable spans, replacement plans and the error taxonomy.
package model

// Placeholder is a named fill point discovered in a template. The same
// normalized key identifies a fill point across every token syntax variant
// that references it.
type Placeholder struct {
	// Token is the literal token string as it appears in the document,
	// e.g. "${so_van_ban}" or "{{SoVanBan}}".
	Token string `json:"token"`

	// Key is the normalized key: lowercase, ASCII-transliterated,
	// underscore-separated.
	Key string `json:"key"`

	// Description is a human-readable hint, present only for synthesized
	// placeholders.
	Description string `json:"description,omitempty"`
}

// SpanCategory classifies the document context surrounding a fillable span.
type SpanCategory string

const (
	CategoryHeading   SpanCategory = "heading"
	CategoryLabel     SpanCategory = "label"
	CategoryTableCell SpanCategory = "table_cell"
	CategoryListItem  SpanCategory = "list_item"
	CategoryParagraph SpanCategory = "paragraph"
	CategoryFreeText  SpanCategory = "free_text"
)

// FillableSpan is a contiguous substring of the flattened document text that
// needs substitution. Used only for templates without native placeholders.
type FillableSpan struct {
	// Text is the literal original text of the span.
	Text string `json:"text"`

	// Key is the proposed normalized key for the span.
	Key string `json:"key"`

	// Category is the classified context of the span.
	Category SpanCategory `json:"category,omitempty"`

	// Confidence is the classifier's confidence in [0,1], when reported.
	Confidence float64 `json:"confidence,omitempty"`
}

// CollectedData is the upstream field-name to value mapping assembled by
// conversation state. Keys are free-form; values are plain strings
// (structured data is serialized before it reaches the core).
type CollectedData map[string]string

// FillMethod identifies which pipeline path produced the output document.
type FillMethod string

const (
	// MethodPlaceholder means native placeholder tokens were found and filled.
	MethodPlaceholder FillMethod = "placeholder"
	// MethodSynthesized means placeholders were synthesized by the
	// classification service before filling.
	MethodSynthesized FillMethod = "synthesized"
	// MethodHeuristic means the label-pattern and dots replacer ran.
	MethodHeuristic FillMethod = "heuristic"
	// MethodRaw means node-aware rewriting was unavailable and only raw
	// string substitution was applied.
	MethodRaw FillMethod = "raw"
)

// Result summarizes a single fill invocation. The pipeline degrades through
// fallback tiers rather than failing, so unmatched fields show up here as
// counts rather than errors.
type Result struct {
	OutputPath string     `json:"output_path"`
	Method     FillMethod `json:"method"`

	// Replaced counts fields substituted into the document.
	Replaced int `json:"replaced"`
	// Failed counts placeholders with no usable data match.
	Failed int `json:"failed"`
	// Skipped counts collected-data entries that matched no placeholder.
	Skipped int `json:"skipped"`

	// Warnings collects non-fatal degradation notes (service failures,
	// malformed parts) for operator diagnosis.
	Warnings []string `json:"warnings,omitempty"`
}

// Warn appends a warning to the result.
func (r *Result) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
