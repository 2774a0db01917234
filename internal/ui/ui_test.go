package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muurk/segmentform/internal/segment"
)

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success with details",
			result: NewSuccessResult("Segment submitted", Detail{"Name", "VIPs"}, Detail{"Fields", "2"}),
			want:   []string{"SUCCESS", "Segment submitted", "Name:", "VIPs", "Fields:"},
		},
		{
			name:   "failure with hints",
			result: NewFailureResult("Submission failed", errors.New("refused"), []string{"Start a sink"}),
			want:   []string{"FAILED", "Submission failed", "Error: refused", "Troubleshooting:", "Start a sink"},
		},
		{
			name:   "warning",
			result: NewWarningResult("Dry run", Detail{"Endpoint", "not contacted"}),
			want:   []string{"WARNING", "Dry run", "not contacted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("Render() missing %q in:\n%s", s, out)
				}
			}
		})
	}
}

func TestResult_DetailsKeepOrder(t *testing.T) {
	r := NewSuccessResult("ok").SetWidth(80)
	r.AddDetail("First", "1").AddDetail("Second", "2").AddDetail("Third", "3")

	out := r.Render()
	first := strings.Index(out, "First")
	second := strings.Index(out, "Second")
	third := strings.Index(out, "Third")

	if first < 0 || !(first < second && second < third) {
		t.Errorf("details out of order: First@%d Second@%d Third@%d", first, second, third)
	}
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("Submit segment", "segmentform submit", Detail{"Endpoint", "http://x/segments"}).SetWidth(80).Render()

	for _, s := range []string{"SUBMIT SEGMENT", "segmentform submit", "Endpoint:", "http://x/segments"} {
		if !strings.Contains(out, s) {
			t.Errorf("Header.Render() missing %q", s)
		}
	}
}

func TestRenderSegmentPreview(t *testing.T) {
	seg := segment.Segment{
		Name: "VIPs",
		Fields: []segment.Field{
			{Key: "first_name", Label: "First Name", Resolved: true},
			{Key: "zip", Resolved: false},
		},
	}

	out := RenderSegmentPreview(seg, 80)
	for _, s := range []string{"VIPs", "1. first_name", "First Name", "2. zip", "not in catalog"} {
		if !strings.Contains(out, s) {
			t.Errorf("RenderSegmentPreview() missing %q in:\n%s", s, out)
		}
	}

	empty := RenderSegmentPreview(segment.Segment{}, 80)
	if !strings.Contains(empty, "(unnamed)") || !strings.Contains(empty, "no fields selected") {
		t.Errorf("empty preview = %s", empty)
	}
}

func TestPrinter_WritesToBuffer(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	if p.Width() != MinTerminalWidth {
		t.Errorf("Width() = %d, want %d for non-terminal writer", p.Width(), MinTerminalWidth)
	}

	p.PrintSuccess("Segment submitted", Detail{"Name", "VIPs"})
	p.Printf("%s=%d\n", "fields", 2)

	out := buf.String()
	if !strings.Contains(out, "Segment submitted") || !strings.Contains(out, "fields=2") {
		t.Errorf("printer output = %q", out)
	}
}

func TestPrinter_SetWidthClamps(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})

	if got := p.SetWidth(10).Width(); got != MinTerminalWidth {
		t.Errorf("SetWidth(10) = %d, want %d", got, MinTerminalWidth)
	}
	if got := p.SetWidth(500).Width(); got != MaxContentWidth {
		t.Errorf("SetWidth(500) = %d, want %d", got, MaxContentWidth)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "Title", []string{"warning"}, "Continue?")
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Continue? [y/N]") {
				t.Errorf("prompt missing from output: %q", out.String())
			}
		})
	}
}
