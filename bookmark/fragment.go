package bookmark

import (
	"github.com/beevik/etree"
)

// Position is relative position of the fragment source block in the span.
type Position int

const (
	Only Position = iota
	First
	Middle
	Last
)

func (p Position) String() string {
	switch p {
	case Only:
		return "only"
	case First:
		return "first"
	case Middle:
		return "middle"
	case Last:
		return "last"
	}
	return "unknown"
}

// Fragment is run level content of a single span block. Nodes returned by
// ExtractFragments still belong to the document, use Clone before moving
// them anywhere.
type Fragment struct {
	Position Position
	Nodes    []*etree.Element
}

// Clone returns deep copy of the fragment, copied nodes are detached and
// owned by the caller. Anchors nested in containers such as w:hyperlink or
// w:ins are not copied: markers must stay unique in the document.
func (f Fragment) Clone() Fragment {
	return f.copyKeeping(nil)
}

// copyKeeping deep copies fragment leaving only nested anchors accepted by
// keep, nil keep drops them all.
func (f Fragment) copyKeeping(keep func(*etree.Element) bool) Fragment {
	nodes := make([]*etree.Element, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		c := n.Copy()
		dropAnchors(c, keep)
		nodes = append(nodes, c)
	}
	return Fragment{Position: f.Position, Nodes: nodes}
}

func dropAnchors(el *etree.Element, keep func(*etree.Element) bool) {
	var drop []*etree.Element
	for child := range el.ChildElementsSeq() {
		if isAnchor(child) {
			if keep == nil || !keep(child) {
				drop = append(drop, child)
			}
			continue
		}
		dropAnchors(child, keep)
	}
	for _, a := range drop {
		el.RemoveChild(a)
	}
}

// CloneAll deep copies every fragment.
func CloneAll(frags []Fragment) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		out = append(out, f.Clone())
	}
	return out
}

// ExtractFragments collects span content block by block without changing
// the document: for a single block span content between anchors, otherwise
// content after the opening anchor in the first block, whole middle blocks
// and content before the closing anchor in the last block. Anchors of other
// markers are not content and are skipped.
func ExtractFragments(doc Document, span Span) []Fragment {
	blocks := doc.Blocks()
	if span.Start < 0 || span.End >= len(blocks) || span.Start > span.End {
		return nil
	}

	frags := make([]Fragment, 0, span.BlockCount())
	for i := span.Start; i <= span.End; i++ {
		pos := positionOf(span, i)
		from, to := contentRange(blocks[i], span, pos)
		frags = append(frags, Fragment{Position: pos, Nodes: contentBetween(blocks[i], from, to)})
	}
	return frags
}

func positionOf(span Span, block int) Position {
	switch {
	case span.SingleBlock():
		return Only
	case block == span.Start:
		return First
	case block == span.End:
		return Last
	}
	return Middle
}

// contentRange returns child token range [from, to) of the block which
// belongs to the span.
func contentRange(block *etree.Element, span Span, pos Position) (int, int) {
	from, to := 0, len(block.Child)
	if (pos == Only || pos == First) && span.head != nil && span.head.Parent() == block {
		from = span.head.Index() + 1
	}
	if (pos == Only || pos == Last) && span.tail != nil && span.tail.Parent() == block {
		to = span.tail.Index()
	}
	return from, to
}

func contentBetween(block *etree.Element, from, to int) []*etree.Element {
	var nodes []*etree.Element
	for i := from; i < to; i++ {
		if el, ok := block.Child[i].(*etree.Element); ok && isContent(el) {
			nodes = append(nodes, el)
		}
	}
	return nodes
}
