package bookmark

import (
	"strconv"

	"github.com/beevik/etree"
)

// IDGen hands out marker identifiers for a single edit session. It starts
// above the largest numeric identifier present in the document, so new
// anchors never collide with existing ones.
type IDGen struct {
	next int64
}

// NewIDGen returns generator seeded from the document anchors. Documents
// which expose their other stories (headers, footers, notes, comments) are
// seeded from those too, as they share identifier space with the body.
func NewIDGen(doc Document) *IDGen {
	var top int64 = -1
	seed := func(el *etree.Element) {
		if v, err := strconv.ParseInt(idOf(el), 10, 64); err == nil && v > top {
			top = v
		}
	}
	walkAnchors(doc.Body(), seed)
	if s, ok := doc.(storied); ok {
		for _, root := range s.Stories() {
			walkAnchors(root, seed)
		}
	}
	return &IDGen{next: top + 1}
}

// storied is implemented by documents with parts other than the body.
type storied interface {
	Stories() []*etree.Element
}

// walkAnchors calls fn for every anchor under root at any depth.
func walkAnchors(root *etree.Element, fn func(*etree.Element)) {
	if root == nil {
		return
	}
	for child := range root.ChildElementsSeq() {
		if isAnchor(child) {
			fn(child)
			continue
		}
		walkAnchors(child, fn)
	}
}

// Next returns fresh identifier.
func (g *IDGen) Next() string {
	id := g.next
	g.next++
	return strconv.FormatInt(id, 10)
}
