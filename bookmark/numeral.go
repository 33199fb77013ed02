package bookmark

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"
	"golang.org/x/text/width"

	"docmark/docx"
)

// leadingNumeral matches list number typed as text up to its dot, e.g. "2.".
var leadingNumeral = regexp.MustCompile(`^\s*\d+\.`)

// fold maps fullwidth digits and punctuation to their narrow forms rune by
// rune, so byte offsets differ but rune offsets of the result match the
// source.
func fold(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		f := width.Fold.String(string(r))
		if utf8.RuneCountInString(f) != 1 {
			f = string(r)
		}
		sb.WriteString(f)
	}
	return sb.String()
}

// numeralLength returns number of runes taken by typed list number at the
// beginning of the text, 0 if there is none. Decimal fractions like "2.5"
// are not numbers of a list.
func numeralLength(text string) int {
	folded := fold(text)
	loc := leadingNumeral.FindStringIndex(folded)
	if loc == nil {
		return 0
	}
	rest := folded[loc[1]:]
	if r, _ := utf8.DecodeRuneInString(rest); r >= '0' && r <= '9' {
		return 0
	}
	// spaces separating number from the text go with it
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	return utf8.RuneCountInString(folded[:len(folded)-len(rest)])
}

// HasNumeral reports whether text starts with list number typed as text.
func HasNumeral(text string) bool {
	return numeralLength(text) > 0
}

// StripNumeral removes list number typed as text from the beginning of the
// first fragment. Runs left without text are dropped. Fragments are changed
// in place and must not belong to the document, pass clones.
func StripNumeral(frags []Fragment) []Fragment {
	if len(frags) == 0 {
		return frags
	}

	var texts []*etree.Element
	for _, n := range frags[0].Nodes {
		texts = append(texts, docx.TextNodes(n)...)
	}
	var sb strings.Builder
	for _, t := range texts {
		sb.WriteString(t.Text())
	}
	k := numeralLength(sb.String())
	if k == 0 {
		return frags
	}

	for _, t := range texts {
		if k == 0 {
			break
		}
		r := []rune(t.Text())
		c := min(k, len(r))
		t.SetText(string(r[c:]))
		k -= c
	}

	nodes := make([]*etree.Element, 0, len(frags[0].Nodes))
	for _, n := range frags[0].Nodes {
		if !emptyRun(n) {
			nodes = append(nodes, n)
		}
	}
	frags[0].Nodes = nodes
	return frags
}

func emptyRun(n *etree.Element) bool {
	if n.FullTag() != docx.TagRun {
		return false
	}
	for c := range n.ChildElementsSeq() {
		switch {
		case c.FullTag() == "w:rPr":
		case c.FullTag() == docx.TagText && c.Text() == "":
		default:
			return false
		}
	}
	return true
}
