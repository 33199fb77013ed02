package docx

import (
	"github.com/beevik/etree"
)

// Style is a comparable snapshot of block level formatting taken directly
// from paragraph properties. Inherited values are not resolved.
type Style struct {
	Align         string
	SpacingBefore string
	SpacingAfter  string
	SpacingLine   string
	IndentLeft    string
	IndentRight   string
	IndentFirst   string
	IndentHanging string
	NumID         string
	NumLevel      string
	StyleID       string
}

// StyleOf reads block style of the paragraph.
func StyleOf(block *etree.Element) Style {
	var s Style
	ppr := BlockStyleElement(block)
	if ppr == nil {
		return s
	}
	s.StyleID = valueOf(ppr.SelectElement("w:pStyle"))
	s.Align = valueOf(ppr.SelectElement("w:jc"))
	if sp := ppr.SelectElement("w:spacing"); sp != nil {
		s.SpacingBefore = sp.SelectAttrValue("w:before", "")
		s.SpacingAfter = sp.SelectAttrValue("w:after", "")
		s.SpacingLine = sp.SelectAttrValue("w:line", "")
	}
	if ind := ppr.SelectElement("w:ind"); ind != nil {
		s.IndentLeft = ind.SelectAttrValue("w:left", ind.SelectAttrValue("w:start", ""))
		s.IndentRight = ind.SelectAttrValue("w:right", ind.SelectAttrValue("w:end", ""))
		s.IndentFirst = ind.SelectAttrValue("w:firstLine", "")
		s.IndentHanging = ind.SelectAttrValue("w:hanging", "")
	}
	if num := ppr.SelectElement("w:numPr"); num != nil {
		s.NumID = valueOf(num.SelectElement("w:numId"))
		s.NumLevel = valueOf(num.SelectElement("w:ilvl"))
	}
	return s
}

// Numbered reports whether paragraph numbering id is set and is not the
// special "0" which removes numbering.
func (s Style) Numbered() bool {
	return s.NumID != "" && s.NumID != "0"
}

func valueOf(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return el.SelectAttrValue("w:val", "")
}

// maxStyleChain limits basedOn walk, style loops are possible in damaged
// documents.
const maxStyleChain = 32

// UsesNumbering reports whether the block is numbered either directly or
// through its paragraph style and styles it is based on.
func (d *Document) UsesNumbering(block *etree.Element) bool {
	s := StyleOf(block)
	if s.NumID != "" {
		return s.Numbered()
	}
	if s.StyleID == "" || d.styles == nil || d.styles.Root() == nil {
		return false
	}

	seen := make(map[string]bool)
	for id := s.StyleID; id != "" && !seen[id] && len(seen) < maxStyleChain; {
		seen[id] = true
		st := d.findStyle(id)
		if st == nil {
			return false
		}
		if ppr := st.SelectElement(TagBlockStyle); ppr != nil {
			if num := ppr.SelectElement("w:numPr"); num != nil {
				numID := valueOf(num.SelectElement("w:numId"))
				return numID != "" && numID != "0"
			}
		}
		id = valueOf(st.SelectElement("w:basedOn"))
	}
	return false
}

func (d *Document) findStyle(id string) *etree.Element {
	for st := range d.styles.Root().SelectElementsSeq("w:style") {
		if st.SelectAttrValue("w:styleId", "") == id && st.SelectAttrValue("w:type", "paragraph") == "paragraph" {
			return st
		}
	}
	return nil
}
