package bookmark

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"docmark/docx"
)

// Content resolves marker and extracts its content. Marker without Close
// anchor in a block with no runs is reported as present and empty rather
// than as an error.
func Content(doc Document, name string, log *zap.Logger) ([]Fragment, error) {
	span, err := ResolveSpan(doc, name, log)
	if errors.Is(err, ErrSpanUnresolved) {
		blocks := doc.Blocks()
		if idx, ok := Locate(doc, name); ok && len(contentBetween(blocks[idx], 0, len(blocks[idx].Child))) == 0 {
			log.Warn("Marker has no closing anchor and its block is empty", zap.String("name", name), zap.Int("block", idx))
			return []Fragment{}, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return ExtractFragments(doc, span), nil
}

// Text joins fragments text, one line per span block.
func Text(frags []Fragment) string {
	lines := make([]string, 0, len(frags))
	for _, f := range frags {
		var sb strings.Builder
		for _, n := range f.Nodes {
			sb.WriteString(docx.Text(n))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
