// Package placeholder discovers and synthesizes named fill points in DOCX
// templates.
package placeholder

import (
	"regexp"
	"strings"

	"github.com/rezonia/docgen/internal/docx"
)

// syntax is one supported token syntax. Scanners run in order; longer
// delimiters come before their shorter prefixes so "{{key}}" is never also
// registered as "{key}".
type syntax struct {
	name    string
	pattern *regexp.Regexp
}

// Keys never contain angle brackets; excluding them keeps the raw-XML pass
// from matching across element tags when a token is fragmented over runs
// (the merged-paragraph pass already resolves those).
var syntaxes = []syntax{
	{"dollar-brace", regexp.MustCompile(`\$\{([^{}<>]+)\}`)},
	{"double-brace", regexp.MustCompile(`\{\{([^{}<>]+)\}\}`)},
	{"single-brace", regexp.MustCompile(`\{([^{}<>]+)\}`)},
	{"double-bracket", regexp.MustCompile(`\[\[([^\[\]<>]+)\]\]`)},
	{"single-bracket", regexp.MustCompile(`\[([^\[\]<>]+)\]`)},
}

// Extract scans the template at templatePath for placeholder tokens in every
// supported syntax and returns token -> normalized key. An empty map with a
// nil error means the template carries no native placeholders and the
// synthesizer must run.
func Extract(templatePath string) (map[string]string, error) {
	session, err := docx.Open(templatePath)
	if err != nil {
		return nil, err
	}
	return ExtractFromSession(session)
}

// ExtractFromSession scans an already-open session. Two passes per text part:
// first the merged-paragraph text (concatenated run text, which resolves
// tokens fragmented across runs), then the raw part XML (which catches tokens
// outside paragraph runs). First registration of a token wins.
func ExtractFromSession(session *docx.Session) (map[string]string, error) {
	found := make(map[string]string)

	for _, partName := range session.TextParts() {
		if doc, err := session.Part(partName); err == nil {
			for _, p := range docx.Paragraphs(doc.Root()) {
				scanText(docx.ParagraphText(p), found)
			}
		}
		// Raw pass runs even when the part does not parse as XML.
		if raw, err := session.RawPart(partName); err == nil {
			scanText(string(raw), found)
		}
	}

	return found, nil
}

// ScanText extracts placeholder tokens from a plain string.
func ScanText(text string) map[string]string {
	found := make(map[string]string)
	scanText(text, found)
	return found
}

func scanText(text string, found map[string]string) {
	for _, syn := range syntaxes {
		matches := syn.pattern.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		masked := []byte(text)
		for _, m := range matches {
			token := text[m[0]:m[1]]
			// Mask the match so shorter-delimiter scanners do not
			// re-match inside it, even when the key is unusable.
			for i := m[0]; i < m[1]; i++ {
				masked[i] = ' '
			}

			key := NormalizeKey(strings.TrimSpace(text[m[2]:m[3]]))
			if key == "" {
				continue
			}
			if _, ok := found[token]; !ok {
				found[token] = key
			}
		}
		text = string(masked)
	}
}

// Token renders a normalized key in the canonical "${key}" syntax used when
// injecting synthesized placeholders.
func Token(key string) string {
	return "${" + key + "}"
}
