package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Element names used across the package. Main part is expected to use
// conventional "w" prefix for WordprocessingML namespace.
const (
	TagBlock      = "w:p"
	TagBlockStyle = "w:pPr"
	TagRun        = "w:r"
	TagText       = "w:t"
	TagSection    = "w:sectPr"
)

func IsBlock(el *etree.Element) bool {
	return el != nil && el.FullTag() == TagBlock
}

// NewBlock returns detached empty paragraph.
func NewBlock() *etree.Element {
	return etree.NewElement(TagBlock)
}

// NewRun returns detached run with a single text node.
func NewRun(text string) *etree.Element {
	r := etree.NewElement(TagRun)
	t := r.CreateElement(TagText)
	if strings.TrimSpace(text) != text {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(text)
	return r
}

// NewBoldRun returns detached run with bold text.
func NewBoldRun(text string) *etree.Element {
	r := NewRun(text)
	rpr := etree.NewElement("w:rPr")
	rpr.CreateElement("w:b")
	r.InsertChildAt(0, rpr)
	return r
}

// AppendBlock adds block at the end of the body keeping trailing section
// properties last.
func (d *Document) AppendBlock(block *etree.Element) {
	var last *etree.Element
	for el := range d.body.ChildElementsSeq() {
		last = el
	}
	if last != nil && last.FullTag() == TagSection {
		d.body.InsertChildAt(last.Index(), block)
		return
	}
	d.body.AddChild(block)
}

// BlockStyleElement returns w:pPr of the block or nil.
func BlockStyleElement(block *etree.Element) *etree.Element {
	return block.SelectElement(TagBlockStyle)
}

// ContentStart returns position in the block child list right after block
// properties, where run content begins.
func ContentStart(block *etree.Element) int {
	if ppr := BlockStyleElement(block); ppr != nil {
		return ppr.Index() + 1
	}
	return 0
}

// Text returns visible text of the node: text nodes, tabs and breaks.
// Deleted text and field instructions are skipped.
func Text(node *etree.Element) string {
	var sb strings.Builder
	collectText(&sb, node)
	return sb.String()
}

func collectText(sb *strings.Builder, el *etree.Element) {
	switch el.FullTag() {
	case TagText:
		sb.WriteString(el.Text())
		return
	case "w:tab", "w:ptab":
		sb.WriteByte('\t')
		return
	case "w:br", "w:cr":
		sb.WriteByte('\n')
		return
	case "w:delText", "w:instrText", TagBlockStyle, "w:rPr":
		return
	}
	for child := range el.ChildElementsSeq() {
		collectText(sb, child)
	}
}

// TextNodes returns all w:t descendants of the node in document order.
func TextNodes(node *etree.Element) []*etree.Element {
	var nodes []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.FullTag() == TagText {
			nodes = append(nodes, el)
			return
		}
		for child := range el.ChildElementsSeq() {
			walk(child)
		}
	}
	walk(node)
	return nodes
}
