package docx

import "github.com/beevik/etree"

// NodeSpan maps one text node to its slice of the flattened string.
// Zero-length spans are kept so empty nodes retain their identity for later
// writes.
type NodeSpan struct {
	Node   *etree.Element
	Start  int
	Length int
}

// TextModel is a flattened view of the text nodes under one scope element:
// a single logical string plus an index mapping logical offsets back to the
// originating w:t nodes. Spans partition [0, len(Text)) contiguously in
// document order.
type TextModel struct {
	Text  string
	Spans []NodeSpan
}

// Flatten builds a TextModel over every w:t descendant of scope in document
// order.
func Flatten(scope *etree.Element) *TextModel {
	tm := &TextModel{}
	flattenInto(scope, tm)
	return tm
}

func flattenInto(elem *etree.Element, tm *TextModel) {
	for _, child := range elem.ChildElements() {
		if child.Tag == "t" {
			text := child.Text()
			tm.Spans = append(tm.Spans, NodeSpan{
				Node:   child,
				Start:  len(tm.Text),
				Length: len(text),
			})
			tm.Text += text
			continue
		}
		flattenInto(child, tm)
	}
}

// Rewrite writes newText entirely into the first node of the index and
// empties every other node. Placeholder tokens frequently span multiple runs
// with different styles, and there is no general way to partition replacement
// text back across N runs while keeping N style boundaries, so the whole
// affected scope inherits the first node's formatting. No-op when the index
// is empty.
func (tm *TextModel) Rewrite(newText string) {
	if len(tm.Spans) == 0 {
		return
	}

	setTextContent(tm.Spans[0].Node, newText)
	for _, span := range tm.Spans[1:] {
		span.Node.SetText("")
	}

	tm.Text = newText
	tm.Spans[0].Length = len(newText)
	for i := range tm.Spans[1:] {
		tm.Spans[i+1].Start = len(newText)
		tm.Spans[i+1].Length = 0
	}
}
