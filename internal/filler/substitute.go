package filler

import (
	"bytes"
	"errors"
	"os"
	"sort"
	"strings"

	ndocx "github.com/nguyenthenguyen/docx"

	"github.com/rezonia/docgen/internal/docx"
	"github.com/rezonia/docgen/internal/model"
)

// subOutcome reports what a substitution pass did.
type subOutcome struct {
	// replaced counts literals substituted at least once.
	replaced int
	// missing lists literals never found in the document.
	missing []string
	// raw is true when node-aware rewriting was unavailable and the pass
	// degraded to plain string replacement on the raw part bytes.
	raw bool
}

// substituteLiterals replaces each literal with its value inside the working
// copy at workPath, in place.
//
// Tier 1 replaces literals through the document library's raw content, which
// preserves per-run formatting whenever the literal sits wholly inside one
// run. Tier 2 runs when any literal is still visible afterwards (in the raw
// XML or in merged paragraph text): every paragraph is flattened, all
// replacements applied to the flattened text, and changed paragraphs
// rewritten through the text model, which sacrifices per-run style for
// correctness on fragmented text. A part that fails to parse degrades
// further to plain string replacement on its raw bytes.
func substituteLiterals(workPath string, replacements map[string]string) (*subOutcome, error) {
	outcome := &subOutcome{}
	if len(replacements) == 0 {
		return outcome, nil
	}

	literals := sortedLiterals(replacements)

	tier1Applied := runTier1(workPath, literals, replacements)

	session, err := docx.Open(workPath)
	if err != nil {
		var malformed *model.MalformedDocumentError
		if tier1Applied && errors.As(err, &malformed) {
			// Tier 1 already wrote what it could; nothing node-aware
			// is possible on an unreadable archive. Count against the
			// written bytes, the only evidence left.
			outcome.raw = true
			data, readErr := os.ReadFile(workPath)
			if readErr != nil {
				return nil, readErr
			}
			countAgainstRaw(data, literals, outcome)
			return outcome, nil
		}
		return nil, err
	}

	remaining := findRemaining(session, literals)
	if len(remaining) > 0 {
		rawDegraded, err := runTier2(session, literals, replacements)
		if err != nil {
			return nil, err
		}
		outcome.raw = rawDegraded
		if err := session.SaveInPlace(); err != nil {
			return nil, err
		}

		// Re-open to verify which literals survived both tiers.
		session, err = docx.Open(workPath)
		if err != nil {
			return nil, err
		}
		remaining = findRemaining(session, literals)
	}

	stillMissing := make(map[string]bool, len(remaining))
	for _, lit := range remaining {
		stillMissing[lit] = true
	}
	for _, lit := range literals {
		if stillMissing[lit] {
			outcome.missing = append(outcome.missing, lit)
			continue
		}
		outcome.replaced++
	}

	return outcome, nil
}

// countAgainstRaw classifies literals by their presence in the raw file
// bytes: still visible means missing, gone means replaced. Used when the
// archive no longer parses and no merged-text check is possible.
func countAgainstRaw(data []byte, literals []string, outcome *subOutcome) {
	for _, lit := range literals {
		if bytes.Contains(data, []byte(lit)) {
			outcome.missing = append(outcome.missing, lit)
			continue
		}
		outcome.replaced++
	}
}

// runTier1 performs direct library-level replacement. Returns false when the
// library cannot open the file at all.
func runTier1(workPath string, literals []string, replacements map[string]string) bool {
	reader, err := ndocx.ReadDocxFile(workPath)
	if err != nil {
		return false
	}
	defer reader.Close()

	editable := reader.Editable()
	for _, lit := range literals {
		_ = editable.Replace(lit, replacements[lit], -1)
		_ = editable.ReplaceHeader(lit, replacements[lit])
		_ = editable.ReplaceFooter(lit, replacements[lit])
	}

	if err := editable.WriteToFile(workPath); err != nil {
		return false
	}
	return true
}

// findRemaining reports literals still visible in any text part, checking
// both the raw XML and the merged paragraph text. The merged check is what
// catches literals fragmented across runs, which the raw XML hides behind
// interleaved tags.
func findRemaining(session *docx.Session, literals []string) []string {
	var texts []string
	for _, partName := range session.TextParts() {
		if raw, err := session.RawPart(partName); err == nil {
			texts = append(texts, string(raw))
		}
		if doc, err := session.Part(partName); err == nil {
			for _, p := range docx.Paragraphs(doc.Root()) {
				texts = append(texts, docx.ParagraphText(p))
			}
		}
	}

	var remaining []string
	for _, lit := range literals {
		for _, text := range texts {
			if strings.Contains(text, lit) {
				remaining = append(remaining, lit)
				break
			}
		}
	}
	return remaining
}

// runTier2 applies every replacement to every paragraph's flattened text and
// rewrites the paragraphs that changed. Parts that fail to parse get plain
// string replacement on their raw bytes instead; the return value reports
// whether that last-resort path ran.
func runTier2(session *docx.Session, literals []string, replacements map[string]string) (bool, error) {
	rawDegraded := false

	for _, partName := range session.TextParts() {
		doc, err := session.Part(partName)
		if err != nil {
			var malformed *model.MalformedDocumentError
			if !errors.As(err, &malformed) {
				return rawDegraded, err
			}
			raw, rawErr := session.RawPart(partName)
			if rawErr != nil {
				continue
			}
			content := string(raw)
			for _, lit := range literals {
				content = strings.ReplaceAll(content, lit, xmlEscape(replacements[lit]))
			}
			session.SetRawPart(partName, []byte(content))
			rawDegraded = true
			continue
		}

		dirty := false
		for _, p := range docx.Paragraphs(doc.Root()) {
			tm := docx.Flatten(p)
			newText := tm.Text
			for _, lit := range literals {
				newText = strings.ReplaceAll(newText, lit, replacements[lit])
			}
			if newText != tm.Text {
				tm.Rewrite(newText)
				dirty = true
			}
		}
		if dirty {
			session.MarkDirty(partName)
		}
	}

	return rawDegraded, nil
}

// sortedLiterals orders replacement keys longest first so a literal that
// contains another literal is consumed before its substring, with a
// lexicographic tiebreak for determinism.
func sortedLiterals(replacements map[string]string) []string {
	literals := make([]string, 0, len(replacements))
	for lit := range replacements {
		literals = append(literals, lit)
	}
	sort.Slice(literals, func(i, j int) bool {
		if len(literals[i]) != len(literals[j]) {
			return len(literals[i]) > len(literals[j])
		}
		return literals[i] < literals[j]
	})
	return literals
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// xmlEscape protects replacement values spliced directly into raw XML.
func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}
