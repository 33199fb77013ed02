// Package bookmark implements marker span algebra over WordprocessingML
// documents: locating bookmarks, resolving the block range they cover,
// extracting and replacing their content and inserting new markers.
package bookmark

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"docmark/docx"
)

const (
	tagOpen  = "w:bookmarkStart"
	tagClose = "w:bookmarkEnd"
	attrID   = "w:id"
	attrName = "w:name"
)

// Document is the part of the document model markers live in.
type Document interface {
	// Body returns element which holds blocks.
	Body() *etree.Element
	// Blocks returns blocks in document order.
	Blocks() []*etree.Element
}

func isOpen(el *etree.Element) bool {
	return el.FullTag() == tagOpen
}

func isClose(el *etree.Element) bool {
	return el.FullTag() == tagClose
}

func isAnchor(el *etree.Element) bool {
	return isOpen(el) || isClose(el)
}

// isContent reports whether block child is a run level node.
func isContent(el *etree.Element) bool {
	return !isAnchor(el) && el.FullTag() != docx.TagBlockStyle
}

func idOf(el *etree.Element) string {
	return el.SelectAttrValue(attrID, "")
}

func openIn(block *etree.Element, name string) *etree.Element {
	for el := range block.ChildElementsSeq() {
		if isOpen(el) && el.SelectAttrValue(attrName, "") == name {
			return el
		}
	}
	return nil
}

func findOpen(blocks []*etree.Element, name string) (int, *etree.Element) {
	for i, b := range blocks {
		if el := openIn(b, name); el != nil {
			return i, el
		}
	}
	return -1, nil
}

// Locate returns index of the first block with Open anchor named name.
func Locate(doc Document, name string) (int, bool) {
	idx, _ := findOpen(doc.Blocks(), name)
	return idx, idx >= 0
}

// IdentifierOf returns identifier of the marker Open anchor.
func IdentifierOf(doc Document, name string) (string, bool) {
	_, el := findOpen(doc.Blocks(), name)
	if el == nil {
		return "", false
	}
	return idOf(el), true
}

// LocateText finds first block whose text contains s. This is recovery path
// for documents with lost anchors, every use is logged.
func LocateText(doc Document, s string, log *zap.Logger) (int, bool) {
	if s == "" {
		return -1, false
	}
	for i, b := range doc.Blocks() {
		if strings.Contains(docx.Text(b), s) {
			log.Warn("Marker located by text, anchors are not used", zap.String("text", s), zap.Int("block", i))
			return i, true
		}
	}
	return -1, false
}

// Marker describes single marker found in the document.
type Marker struct {
	Name  string
	ID    string
	Start int
	End   int
	// Err is set when span could not be resolved.
	Err error
}

// Markers lists every marker in the document ordered by name.
func Markers(doc Document, log *zap.Logger) []Marker {
	seen := make(map[string]bool)
	var names []string
	for _, b := range doc.Blocks() {
		for el := range b.ChildElementsSeq() {
			if !isOpen(el) {
				continue
			}
			name := el.SelectAttrValue(attrName, "")
			if seen[name] {
				log.Debug("Duplicate marker name, only first is used", zap.String("name", name))
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Sort(natural.StringSlice(names))

	markers := make([]Marker, 0, len(names))
	for _, name := range names {
		m := Marker{Name: name, Start: -1, End: -1}
		span, err := ResolveSpan(doc, name, log)
		if err != nil {
			m.ID, _ = IdentifierOf(doc, name)
			m.Err = err
		} else {
			m.ID, m.Start, m.End = span.ID, span.Start, span.End
		}
		markers = append(markers, m)
	}
	return markers
}
