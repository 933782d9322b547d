package docx

import "github.com/beevik/etree"

// Helpers over wordprocessingml run (w:r) and text (w:t) elements. etree
// matches on local tag names, so namespace prefixes are ignored here.

// runText concatenates the text of every w:t child of a run.
func runText(r *etree.Element) string {
	text := ""
	for _, t := range r.ChildElements() {
		if t.Tag == "t" {
			text += t.Text()
		}
	}
	return text
}

// setTextContent writes content into a w:t element, setting
// xml:space="preserve" when the content has leading or trailing whitespace
// so Word does not strip it on load.
func setTextContent(t *etree.Element, content string) {
	t.SetText(content)
	if content != "" && (content[0] == ' ' || content[len(content)-1] == ' ') {
		t.CreateAttr("xml:space", "preserve")
	}
}

// paragraphRuns returns the w:r children of a paragraph in document order.
func paragraphRuns(p *etree.Element) []*etree.Element {
	var runs []*etree.Element
	for _, child := range p.ChildElements() {
		if child.Tag == "r" {
			runs = append(runs, child)
		}
	}
	return runs
}

// Paragraphs returns every w:p element under root in document order,
// including paragraphs nested in tables.
func Paragraphs(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	collectParagraphs(root, &out)
	return out
}

func collectParagraphs(elem *etree.Element, out *[]*etree.Element) {
	for _, child := range elem.ChildElements() {
		if child.Tag == "p" {
			*out = append(*out, child)
			continue
		}
		collectParagraphs(child, out)
	}
}

// ParagraphText concatenates all run text within a paragraph. Run boundaries
// are an authoring-tool artifact, so this is the only reliable way to see the
// paragraph's logical text.
func ParagraphText(p *etree.Element) string {
	text := ""
	for _, r := range paragraphRuns(p) {
		text += runText(r)
	}
	return text
}
