package ui

import (
	"fmt"
	"strings"

	"github.com/muurk/segmentform/internal/segment"
)

// RenderSegmentPreview renders the segment about to be (or just) submitted
func RenderSegmentPreview(seg segment.Segment, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	name := seg.Name
	if name == "" {
		name = "(unnamed)"
	}

	lines := []string{
		HeaderTitleStyle.UnsetPaddingLeft().Render(name),
		"",
	}

	if len(seg.Fields) == 0 {
		lines = append(lines, FieldKeyStyle.Render("no fields selected"))
	}

	keyWidth := 0
	for _, f := range seg.Fields {
		if len(f.Key) > keyWidth {
			keyWidth = len(f.Key)
		}
	}

	for i, f := range seg.Fields {
		key := FieldKeyStyle.Render(fmt.Sprintf("%2d. %-*s", i+1, keyWidth, f.Key))
		label := FieldLabelStyle.Render(f.Label)
		if !f.Resolved {
			label = UnresolvedStyle.Render("not in catalog")
		}
		lines = append(lines, key+"  "+label)
	}

	return PreviewBoxStyle(width).Render(strings.Join(lines, "\n"))
}
