package filler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/rezonia/docgen/internal/docx"
	"github.com/rezonia/docgen/internal/llm"
	"github.com/rezonia/docgen/internal/model"
)

// DefaultContextWindow is how many runes of surrounding text are taken on
// each side of a dots placeholder when classifying it.
const DefaultContextWindow = 100

// labelPattern maps a conventional Vietnamese document label to the data
// fields that can stand in for it, tried in order.
type labelPattern struct {
	text   string
	fields []string
}

var labelPatterns = []labelPattern{
	{"TÊN CƠ QUAN, TỔ CHỨC", []string{"ten_co_quan", "ten_to_chuc", "co_quan", "ten_don_vi"}},
	{"TÊN CƠ QUAN CHỦ QUẢN", []string{"co_quan_chu_quan", "ten_co_quan_chu_quan"}},
	{"TÊN ĐƠN VỊ", []string{"ten_don_vi", "don_vi", "ten_co_quan"}},
	{"Số:", []string{"so_van_ban", "so", "so_hieu"}},
	{"Địa chỉ:", []string{"dia_chi", "address"}},
	{"Điện thoại:", []string{"dien_thoai", "sdt", "phone"}},
	{"Kính gửi:", []string{"kinh_gui", "noi_nhan"}},
	{"Họ và tên:", []string{"ho_ten", "ho_va_ten", "ten"}},
	{"Chức vụ:", []string{"chuc_vu", "position"}},
}

// dotsPattern matches a known fill-point by its surrounding context and
// names the data field or generation prompt that fills it.
type dotsPattern struct {
	re     *regexp.Regexp
	fields []string
	prompt string
}

var knownDotsPatterns = []dotsPattern{
	{
		re:     regexp.MustCompile(`BÁO CÁO HOẠT ĐỘNG`),
		fields: []string{"noi_dung_bao_cao", "bao_cao", "noi_dung"},
		prompt: "Viết phần nội dung cho mục \"BÁO CÁO HOẠT ĐỘNG\" của văn bản.",
	},
	{
		re:     regexp.MustCompile(`(?i)kế hoạch (công tác|hoạt động)`),
		fields: []string{"ke_hoach", "phuong_huong"},
		prompt: "Viết phần kế hoạch công tác cho văn bản.",
	},
	{
		re:     regexp.MustCompile(`(?i)kết quả (thực hiện|đạt được)`),
		fields: []string{"ket_qua", "ket_qua_thuc_hien"},
		prompt: "Viết phần kết quả thực hiện cho văn bản.",
	},
	{
		re:     regexp.MustCompile(`(?i)kiến nghị|đề xuất`),
		fields: []string{"kien_nghi", "de_xuat"},
		prompt: "Viết phần kiến nghị, đề xuất cho văn bản.",
	},
}

var (
	dotsRe     = regexp.MustCompile(`\.{3,}`)
	pipeRe     = regexp.MustCompile(`\|`)
	listLeadRe = regexp.MustCompile(`(?m)^\s*[-*+]\s`)
	labelEndRe = regexp.MustCompile(`:\s*$`)
)

// Heuristic fills templates that carry no placeholders at all: conventional
// Vietnamese label patterns are substituted from collected data, and runs of
// dots (the paper-form fill-in marker) are filled with generated content.
type Heuristic struct {
	completer     Completer
	contextWindow int
}

// HeuristicOption configures the heuristic replacer
type HeuristicOption func(*Heuristic)

// WithContextWindow overrides the dots-context window size in runes.
func WithContextWindow(n int) HeuristicOption {
	return func(h *Heuristic) {
		h.contextWindow = n
	}
}

// NewHeuristic creates a heuristic replacer. completer may be nil, in which
// case dots placeholders without a matching data field stay unfilled.
func NewHeuristic(completer Completer, opts ...HeuristicOption) *Heuristic {
	h := &Heuristic{
		completer:     completer,
		contextWindow: DefaultContextWindow,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fill applies the label-pattern table and dots replacement to the working
// copy at workPath, in place. Generation calls run sequentially, one per
// unresolved dots span; each failure yields an empty string for that span
// and a warning, never an error.
func (h *Heuristic) Fill(ctx context.Context, workPath string, data model.CollectedData, result *model.Result) error {
	// Label patterns are literal text replacements and reuse the two-tier
	// substitution machinery.
	labels := h.labelReplacements(workPath, data)
	if len(labels) > 0 {
		outcome, err := substituteLiterals(workPath, labels)
		if err != nil {
			return err
		}
		result.Replaced += outcome.replaced
		result.Failed += len(outcome.missing)
		for _, lit := range outcome.missing {
			result.Warn(fmt.Sprintf("label %q detected but not replaced", lit))
		}
		if outcome.raw {
			result.Method = model.MethodRaw
		}
	}

	return h.fillDots(ctx, workPath, data, result)
}

// labelReplacements selects the label patterns present in the document and
// the first non-empty data value for each.
func (h *Heuristic) labelReplacements(workPath string, data model.CollectedData) map[string]string {
	text := documentText(workPath)
	replacements := make(map[string]string)

	for _, lp := range labelPatterns {
		if !strings.Contains(text, lp.text) {
			continue
		}
		for _, field := range lp.fields {
			if v, ok := data[field]; ok && v != "" {
				replacements[lp.text] = v
				break
			}
		}
	}

	return replacements
}

// fillDots locates runs of 3+ dots paragraph by paragraph, classifies each
// by its surrounding context, resolves content (known pattern, data field,
// or generation) and splices it in by position, so identical dots runs in
// different contexts each get their own content.
func (h *Heuristic) fillDots(ctx context.Context, workPath string, data model.CollectedData, result *model.Result) error {
	session, err := docx.Open(workPath)
	if err != nil {
		return err
	}

	doc, err := session.Part(docx.DocumentPart)
	if err != nil {
		// Without a parseable document part there is no reliable way to
		// locate dots spans; leave the document as is.
		result.Warn(fmt.Sprintf("dots fill skipped: %v", err))
		return nil
	}

	paragraphs := docx.Paragraphs(doc.Root())
	paraTexts := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		paraTexts[i] = docx.ParagraphText(p)
	}
	fullText := strings.Join(paraTexts, "\n")

	dirty := false
	offset := 0
	for i, p := range paragraphs {
		text := paraTexts[i]
		matches := dotsRe.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			offset += len(text) + 1
			continue
		}

		newText := text
		// Right to left so earlier offsets stay valid while splicing.
		for j := len(matches) - 1; j >= 0; j-- {
			start, end := matches[j][0], matches[j][1]
			contextText := surrounding(fullText, offset+start, offset+end, h.contextWindow)
			category := classifyContext(contextText)

			content := h.resolveDotsContent(ctx, contextText, category, data, result)
			if content == "" {
				continue
			}
			newText = newText[:start] + content + newText[end:]
			result.Replaced++
		}

		if newText != text {
			tm := docx.Flatten(p)
			tm.Rewrite(newText)
			dirty = true
		}
		offset += len(text) + 1
	}

	if dirty {
		session.MarkDirty(docx.DocumentPart)
		if err := session.SaveInPlace(); err != nil {
			return err
		}
	}

	return nil
}

// resolveDotsContent finds content for one dots span: known-pattern table
// first (data field, then its canned prompt), then generic generation for
// the detected context type. Best effort: empty string when nothing applies
// or generation fails.
func (h *Heuristic) resolveDotsContent(ctx context.Context, contextText string, category model.SpanCategory, data model.CollectedData, result *model.Result) string {
	for _, kp := range knownDotsPatterns {
		if !kp.re.MatchString(contextText) {
			continue
		}
		for _, field := range kp.fields {
			if v, ok := data[field]; ok && v != "" {
				return v
			}
		}
		return h.generate(ctx, kp.prompt+"\n\nNgữ cảnh:\n"+contextText, category, data, result)
	}

	return h.generate(ctx, contextText, category, data, result)
}

func (h *Heuristic) generate(ctx context.Context, contextText string, category model.SpanCategory, data model.CollectedData, result *model.Result) string {
	if h.completer == nil {
		return ""
	}

	prompt := fmt.Sprintf(llm.UserPromptDotsContent, string(category), contextText, formatData(data))
	content, err := h.completer.Complete(ctx, llm.SystemPromptContentGenerator, prompt, llm.FormatText)
	if err != nil {
		serr := model.NewClassificationServiceError("generate", "dots content generation failed", err)
		slog.Warn("dots content degraded", "error", serr)
		result.Warn(serr.Error())
		return ""
	}

	return strings.TrimSpace(content)
}

// classifyContext buckets a dots span by its surrounding text: all-caps line
// means heading, trailing colon means label, pipes mean table cell, a list
// lead-in means list item, anything else a paragraph.
func classifyContext(contextText string) model.SpanCategory {
	before := contextText
	if i := dotsRe.FindStringIndex(contextText); i != nil {
		before = contextText[:i[0]]
	}
	line := before
	if i := strings.LastIndex(before, "\n"); i != -1 {
		line = before[i+1:]
	}
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed != "" && isAllCaps(trimmed):
		return model.CategoryHeading
	case labelEndRe.MatchString(trimmed):
		return model.CategoryLabel
	case pipeRe.MatchString(contextText):
		return model.CategoryTableCell
	case listLeadRe.MatchString(line):
		return model.CategoryListItem
	default:
		return model.CategoryParagraph
	}
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// surrounding extracts the context window around [start,end) byte offsets in
// text, snapped to rune boundaries.
func surrounding(text string, start, end, window int) string {
	runes := []rune(text)
	rStart := len([]rune(text[:start]))
	rEnd := rStart + len([]rune(text[start:end]))

	from := rStart - window
	if from < 0 {
		from = 0
	}
	to := rEnd + window
	if to > len(runes) {
		to = len(runes)
	}
	return string(runes[from:to])
}

// documentText returns the merged paragraph text of the document part, or ""
// when the part does not parse.
func documentText(workPath string) string {
	session, err := docx.Open(workPath)
	if err != nil {
		return ""
	}
	doc, err := session.Part(docx.DocumentPart)
	if err != nil {
		return ""
	}
	var parts []string
	for _, p := range docx.Paragraphs(doc.Root()) {
		parts = append(parts, docx.ParagraphText(p))
	}
	return strings.Join(parts, "\n")
}

func formatData(data model.CollectedData) string {
	if len(data) == 0 {
		return "(không có)"
	}
	var b strings.Builder
	for _, k := range sortedKeys(data) {
		fmt.Fprintf(&b, "- %s: %s\n", k, data[k])
	}
	return b.String()
}
