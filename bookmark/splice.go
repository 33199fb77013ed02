package bookmark

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docmark/docx"
)

// ReplaceSpanContent removes all content between marker anchors keeping
// anchors and block properties and puts copies of fragments in their place.
// Fragment i goes to span block i, surplus fragments go to the last block.
// Fragments are copied before anything is removed, so span could be filled
// with its own content. Nested anchors in copies survive only when nothing
// else in the document carries their identifier any more.
func ReplaceSpanContent(doc Document, span Span, frags []Fragment, log *zap.Logger) error {
	blocks := doc.Blocks()
	if span.Start < 0 || span.End >= len(blocks) || span.Start > span.End {
		return &SpliceError{Name: span.Name, ID: span.ID,
			Err: fmt.Errorf("span [%d, %d] is out of document range (%d blocks)", span.Start, span.End, len(blocks))}
	}

	head, tail, err := relocate(blocks, span)
	if err != nil {
		return &SpliceError{Name: span.Name, ID: span.ID, Err: err}
	}
	located := span
	located.head, located.tail = head, tail

	clones := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		clones = append(clones, f.copyKeeping(func(*etree.Element) bool { return true }))
	}

	removed := 0
	for i := span.Start; i <= span.End; i++ {
		from, to := contentRange(blocks[i], located, positionOf(located, i))
		for _, el := range contentBetween(blocks[i], from, to) {
			blocks[i].RemoveChild(el)
			removed++
		}
	}

	live := make(map[string]bool)
	walkAnchors(doc.Body(), func(el *etree.Element) { live[idOf(el)] = true })
	for _, f := range clones {
		for _, n := range f.Nodes {
			dropAnchors(n, func(el *etree.Element) bool { return !live[idOf(el)] })
		}
	}

	m := span.BlockCount()
	cursors := make([]int, m)
	for k := range m {
		cursors[k] = insertionPoint(blocks[span.Start+k], k, m, head, tail)
	}
	inserted := 0
	for i, f := range clones {
		k := min(i, m-1)
		block := blocks[span.Start+k]
		for _, n := range f.Nodes {
			block.InsertChildAt(cursors[k], n)
			cursors[k]++
			inserted++
		}
	}

	log.Debug("Marker content replaced",
		zap.String("name", span.Name), zap.String("id", span.ID),
		zap.Int("blocks", m), zap.Int("fragments", len(frags)),
		zap.Int("removed", removed), zap.Int("inserted", inserted))
	return nil
}

// relocate finds span anchors again by marker identifier in the span
// boundary blocks.
func relocate(blocks []*etree.Element, span Span) (head, tail *etree.Element, err error) {
	headTag, tailTag := tagOpen, tagClose
	if span.Suspect {
		headTag, tailTag = tagClose, tagOpen
	}
	if head = anchorIn(blocks[span.Start], headTag, span.ID); head == nil {
		return nil, nil, fmt.Errorf("%w: no %s in block %d", ErrSpanUnresolved, headTag, span.Start)
	}
	if span.Detached {
		return head, nil, nil
	}
	if tail = anchorIn(blocks[span.End], tailTag, span.ID); tail == nil {
		return nil, nil, fmt.Errorf("%w: no %s in block %d", ErrSpanUnresolved, tailTag, span.End)
	}
	if span.SingleBlock() && head.Index() > tail.Index() {
		return nil, nil, errors.New("anchors are out of order")
	}
	return head, tail, nil
}

func anchorIn(block *etree.Element, tag, id string) *etree.Element {
	for el := range block.ChildElementsSeq() {
		if el.FullTag() == tag && idOf(el) == id {
			return el
		}
	}
	return nil
}

// insertionPoint returns child index where content of span block k is put:
// right after the opening anchor in the first block, before the closing
// anchor in the last one, after block properties otherwise.
func insertionPoint(block *etree.Element, k, m int, head, tail *etree.Element) int {
	switch {
	case k == 0:
		return head.Index() + 1
	case k == m-1 && tail != nil:
		return tail.Index()
	case k == m-1:
		return len(block.Child)
	}
	return docx.ContentStart(block)
}
