package bookmark

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docmark/docx"
)

// Span is inclusive block range covered by a marker. Spans are recomputed for
// every query as edits shift block indices.
type Span struct {
	Name  string
	ID    string
	Start int
	End   int

	Open  *etree.Element
	Close *etree.Element

	// Suspect is set when anchors were found in reverse document order and
	// span was recovered by swapping them.
	Suspect bool
	// Detached is set when Close anchor lives outside of any block, span
	// then runs to the end of its last block.
	Detached bool

	// head and tail are anchors delimiting content in document order, they
	// differ from Open and Close only for suspect spans. tail is nil for
	// detached spans.
	head, tail *etree.Element
}

// BlockCount returns number of blocks covered by the span.
func (s Span) BlockCount() int {
	return s.End - s.Start + 1
}

// SingleBlock reports whether both anchors are in the same block.
func (s Span) SingleBlock() bool {
	return s.Start == s.End
}

// ResolveSpan finds marker Open anchor and its matching Close anchor. Close is
// searched in the rest of the Open block, then in later blocks, then in
// earlier blocks, then in the beginning of the Open block and finally among
// nodes of the body outside any block. First match wins.
func ResolveSpan(doc Document, name string, log *zap.Logger) (Span, error) {
	blocks := doc.Blocks()
	start, open := findOpen(blocks, name)
	if open == nil {
		return Span{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	span := Span{Name: name, ID: idOf(open), Start: start, End: -1, Open: open}

	if cl := closeAfter(open, span.ID); cl != nil {
		span.End, span.Close = start, cl
	}
	for i := start + 1; span.Close == nil && i < len(blocks); i++ {
		if cl := closeIn(blocks[i], span.ID); cl != nil {
			span.End, span.Close = i, cl
		}
	}
	for i := 0; span.Close == nil && i < start; i++ {
		if cl := closeIn(blocks[i], span.ID); cl != nil {
			span.End, span.Close = i, cl
		}
	}
	if span.Close == nil {
		if cl := closeBefore(open, span.ID); cl != nil {
			span.End, span.Close = start, cl
			span.Suspect = true
		}
	}
	if span.Close == nil {
		if cl, end := closeInBody(doc.Body(), span.ID); cl != nil {
			span.Close, span.End, span.Detached = cl, max(end, start), true
			log.Debug("Marker closes outside of any block", zap.String("name", name), zap.String("id", span.ID), zap.Int("end", span.End))
		}
	}
	if span.Close == nil {
		return Span{}, fmt.Errorf("%w: %q (id %s)", ErrSpanUnresolved, name, span.ID)
	}

	span.head, span.tail = span.Open, span.Close
	if span.Detached {
		span.tail = nil
	}
	if span.Start > span.End {
		span.Start, span.End = span.End, span.Start
		span.Suspect = true
	}
	if span.Suspect {
		span.head, span.tail = span.Close, span.Open
		log.Warn("Marker anchors are in reverse order, span recovered",
			zap.String("name", name), zap.String("id", span.ID),
			zap.Int("start", span.Start), zap.Int("end", span.End))
	}
	return span, nil
}

// closeIn returns Close anchor with id among block children.
func closeIn(block *etree.Element, id string) *etree.Element {
	for el := range block.ChildElementsSeq() {
		if isClose(el) && idOf(el) == id {
			return el
		}
	}
	return nil
}

func closeAfter(anchor *etree.Element, id string) *etree.Element {
	block := anchor.Parent()
	for i := anchor.Index() + 1; i < len(block.Child); i++ {
		if el, ok := block.Child[i].(*etree.Element); ok && isClose(el) && idOf(el) == id {
			return el
		}
	}
	return nil
}

func closeBefore(anchor *etree.Element, id string) *etree.Element {
	block := anchor.Parent()
	for i := 0; i < anchor.Index(); i++ {
		if el, ok := block.Child[i].(*etree.Element); ok && isClose(el) && idOf(el) == id {
			return el
		}
	}
	return nil
}

// closeInBody looks for Close anchor placed directly into the body and returns
// it with index of the last block preceding it.
func closeInBody(body *etree.Element, id string) (*etree.Element, int) {
	last := -1
	for el := range body.ChildElementsSeq() {
		if docx.IsBlock(el) {
			last++
			continue
		}
		if isClose(el) && idOf(el) == id {
			return el, last
		}
	}
	return nil, -1
}
