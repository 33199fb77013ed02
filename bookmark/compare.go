package bookmark

import (
	"fmt"

	"go.uber.org/zap"

	"docmark/docx"
)

// StylesEqual compares block properties of two markers block by block.
func StylesEqual(doc Document, a, b string, log *zap.Logger) (bool, error) {
	sa, err := ResolveSpan(doc, a, log)
	if err != nil {
		return false, err
	}
	sb, err := ResolveSpan(doc, b, log)
	if err != nil {
		return false, err
	}
	if sa.BlockCount() != sb.BlockCount() {
		return false, fmt.Errorf("%w: %q has %d, %q has %d", ErrBlockCountMismatch, a, sa.BlockCount(), b, sb.BlockCount())
	}

	blocks := doc.Blocks()
	for k := range sa.BlockCount() {
		if docx.StyleOf(blocks[sa.Start+k]) != docx.StyleOf(blocks[sb.Start+k]) {
			log.Debug("Block styles differ", zap.String("a", a), zap.String("b", b), zap.Int("block", k))
			return false, nil
		}
	}
	return true, nil
}
