package docx

import (
	"github.com/beevik/etree"

	"docmark/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns readable tree of the main document part: blocks with their
// style, anchors and run text. It exists for manual inspection only.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	return treeWriter{debug.NewTreeWriter()}.document(d).String()
}

func (tw treeWriter) document(d *Document) treeWriter {
	tw.Line(0, "Document %q", d.Name)
	tw.Line(1, "Parts: %d main=%q styles=%q", len(d.parts), d.mainPart, d.stylesPart)
	block := 0
	for el := range d.body.ChildElementsSeq() {
		if IsBlock(el) {
			tw.block(1, block, el, d.UsesNumbering(el))
			block++
			continue
		}
		tw.other(1, el)
	}
	return tw
}

func (tw treeWriter) block(depth, idx int, el *etree.Element, numbered bool) {
	tw.Line(depth, "Block[%d] children=%d numbered=%t", idx, len(el.ChildElements()), numbered)
	s := StyleOf(el)
	if s != (Style{}) {
		tw.Props(depth+1, "Style",
			"id", s.StyleID, "jc", s.Align,
			"before", s.SpacingBefore, "after", s.SpacingAfter, "line", s.SpacingLine,
			"left", s.IndentLeft, "right", s.IndentRight, "first", s.IndentFirst, "hanging", s.IndentHanging,
			"num", s.NumID, "lvl", s.NumLevel)
	}
	for child := range el.ChildElementsSeq() {
		switch child.FullTag() {
		case TagBlockStyle:
		case "w:bookmarkStart":
			tw.Props(depth+1, "Open", "id", child.SelectAttrValue("w:id", ""), "name", child.SelectAttrValue("w:name", ""))
		case "w:bookmarkEnd":
			tw.Props(depth+1, "Close", "id", child.SelectAttrValue("w:id", ""))
		default:
			tw.TextBlock(depth+1, child.FullTag(), Text(child))
		}
	}
}

func (tw treeWriter) other(depth int, el *etree.Element) {
	switch el.FullTag() {
	case "w:bookmarkStart":
		tw.Props(depth, "Open (outside block)", "id", el.SelectAttrValue("w:id", ""), "name", el.SelectAttrValue("w:name", ""))
	case "w:bookmarkEnd":
		tw.Props(depth, "Close (outside block)", "id", el.SelectAttrValue("w:id", ""))
	default:
		tw.Line(depth, "%s", el.FullTag())
	}
}
