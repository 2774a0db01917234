package segment

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the segment
func (s Segment) Summary() string {
	return fmt.Sprintf("Segment %q (%d fields)", s.Name, len(s.Fields))
}

// FormatCompact returns a compact format suitable for terminal display
func (s Segment) FormatCompact() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Segment: %s\n", displayName(s.Name)))
	b.WriteString(fmt.Sprintf("Fields:  %s\n", formatKeyList(s.Keys())))

	return b.String()
}

// FormatDetailed returns a formatted listing of every field with its label
func (s Segment) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Segment ===\n")
	b.WriteString(fmt.Sprintf("Name:   %s\n", displayName(s.Name)))
	b.WriteString(fmt.Sprintf("Fields: %d\n", len(s.Fields)))
	b.WriteString("\n")

	b.WriteString("=== Schema ===\n")
	if len(s.Fields) == 0 {
		b.WriteString("(no fields selected)\n")
		return b.String()
	}

	width := 0
	for _, f := range s.Fields {
		if len(f.Key) > width {
			width = len(f.Key)
		}
	}

	for i, f := range s.Fields {
		label := f.Label
		if !f.Resolved {
			label = "(unknown field)"
		}
		b.WriteString(fmt.Sprintf("%2d. %-*s  %s\n", i+1, width, f.Key, label))
	}

	return b.String()
}

// FormatCatalog lists catalog entries as "key  Label" lines
func FormatCatalog(c *Catalog) string {
	var b strings.Builder

	width := 0
	for _, e := range c.entries {
		if len(e.Key) > width {
			width = len(e.Key)
		}
	}

	for _, e := range c.entries {
		b.WriteString(fmt.Sprintf("%-*s  %s\n", width, e.Key, e.Label))
	}

	return b.String()
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}

func formatKeyList(keys []string) string {
	if len(keys) == 0 {
		return "(none)"
	}
	return strings.Join(keys, ", ")
}
