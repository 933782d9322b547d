package mapper

import (
	"regexp"
	"strings"
)

// DefaultMaxValueRunes caps substituted values against pathological inputs.
const DefaultMaxValueRunes = 4000

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	mdHeadingRe  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdLinkRe     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdEmphasisRe = regexp.MustCompile(`(\*\*|__|\*|_|~~)`)
	spacesRe     = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	trailingWSRe = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Sanitize strips markdown and HTML markup from a value, collapses repeated
// whitespace while preserving paragraph breaks, and caps the length. Values
// come from user input or the generation service and go directly into the
// document, so markup would otherwise leak into the output text.
func Sanitize(value string) string {
	v := value

	v = mdLinkRe.ReplaceAllString(v, "$1")
	v = mdHeadingRe.ReplaceAllString(v, "")
	v = mdEmphasisRe.ReplaceAllString(v, "")
	v = htmlTagRe.ReplaceAllString(v, "")

	v = spacesRe.ReplaceAllString(v, " ")
	v = trailingWSRe.ReplaceAllString(v, "")
	v = blankLinesRe.ReplaceAllString(v, "\n\n")
	v = strings.TrimSpace(v)

	runes := []rune(v)
	if len(runes) > DefaultMaxValueRunes {
		v = string(runes[:DefaultMaxValueRunes])
	}

	return v
}
