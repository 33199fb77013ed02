package bookmark

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docmark/docx"
)

// InsertMarkerBefore creates marker name spanning as many blocks as marker
// ref does and puts its blocks right before the first block of ref. Every
// new block gets a copy of the corresponding ref block properties and
// placeholder text. Document is changed only after all new blocks are ready.
func InsertMarkerBefore(doc Document, ref, name string, ids *IDGen, placeholder string, log *zap.Logger) error {
	if _, exists := Locate(doc, name); exists {
		return &DuplicationError{Reference: ref, Name: name, Err: fmt.Errorf("%w: %q", ErrMarkerExists, name)}
	}
	span, err := ResolveSpan(doc, ref, log)
	if err != nil {
		return &DuplicationError{Reference: ref, Name: name, Err: err}
	}
	n := span.BlockCount()
	if n <= 0 {
		return &DuplicationError{Reference: ref, Name: name, Err: fmt.Errorf("empty span [%d, %d]", span.Start, span.End)}
	}

	blocks := doc.Blocks()
	created := make([]*etree.Element, 0, n)
	for k := range n {
		created = append(created, cloneBlockStyle(blocks[span.Start+k], placeholder))
	}
	id := ids.Next()
	Attach(created[0], created[n-1], name, id)

	body := doc.Body()
	at := blocks[span.Start].Index()
	for k, b := range created {
		body.InsertChildAt(at+k, b)
	}

	log.Debug("Marker inserted",
		zap.String("name", name), zap.String("id", id), zap.String("before", ref),
		zap.Int("start", span.Start), zap.Int("blocks", n))
	return nil
}

// cloneBlockStyle returns new detached block with copy of the source block
// properties. Section break properties stay with the source.
func cloneBlockStyle(src *etree.Element, placeholder string) *etree.Element {
	b := docx.NewBlock()
	if ppr := docx.BlockStyleElement(src); ppr != nil {
		cp := ppr.Copy()
		if sect := cp.SelectElement(docx.TagSection); sect != nil {
			cp.RemoveChild(sect)
		}
		b.AddChild(cp)
	}
	if placeholder != "" {
		b.AddChild(docx.NewRun(placeholder))
	}
	return b
}

// Attach wraps run content of blocks first through last with a new marker:
// Open anchor goes before any run of the first block, Close anchor after
// everything in the last one. first and last may be the same block.
func Attach(first, last *etree.Element, name, id string) {
	open := etree.NewElement(tagOpen)
	open.CreateAttr(attrID, id)
	open.CreateAttr(attrName, name)
	first.InsertChildAt(docx.ContentStart(first), open)

	cl := etree.NewElement(tagClose)
	cl.CreateAttr(attrID, id)
	last.AddChild(cl)
}
