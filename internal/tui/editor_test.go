package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/muurk/segmentform/internal/segment"
	"github.com/muurk/segmentform/internal/submit"
)

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msgs to the editor in order, ignoring returned commands
func send(t *testing.T, m EditorModel, msgs ...tea.Msg) EditorModel {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(EditorModel)
	}
	return m
}

// collect runs cmd and returns messages of type T, unwrapping batches
func collect[T any](cmd tea.Cmd) []T {
	if cmd == nil {
		return nil
	}
	var out []T
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect[T](c)...)
		}
	case T:
		out = append(out, msg)
	}
	return out
}

func newTestEditor(s submit.Submitter) EditorModel {
	if s == nil {
		s = submit.SubmitterFunc(func(context.Context, segment.Segment) error { return nil })
	}
	return NewEditorModel(segment.DefaultCatalog(), s, "http://sink.test/segments", 0)
}

func TestNewEditorModel(t *testing.T) {
	m := newTestEditor(nil)

	if m.Focus != 0 {
		t.Errorf("Focus = %d, want 0", m.Focus)
	}
	if m.Editor.Len() != 0 {
		t.Errorf("rows = %d, want 0", m.Editor.Len())
	}
	if m.Closed || m.Submitting {
		t.Error("new editor should be open and idle")
	}
	if m.addFocus() != 2 || m.saveFocus() != 3 || m.cancelFocus() != 4 {
		t.Errorf("button focus = %d/%d/%d, want 2/3/4", m.addFocus(), m.saveFocus(), m.cancelFocus())
	}
}

func TestEditorTypingSetsName(t *testing.T) {
	m := send(t, newTestEditor(nil), runes("V"), runes("I"), runes("P"))

	if got := m.Editor.Name(); got != "VIP" {
		t.Errorf("Name() = %q, want %q", got, "VIP")
	}
}

func TestEditorFocusWraps(t *testing.T) {
	m := newTestEditor(nil)

	// name, pending, add, save, cancel
	for i := 0; i < 5; i++ {
		m = send(t, m, keyTab)
	}
	if m.Focus != 0 {
		t.Errorf("Focus after full cycle = %d, want 0", m.Focus)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Focus != m.cancelFocus() {
		t.Errorf("Focus after shift+tab = %d, want %d", m.Focus, m.cancelFocus())
	}
}

func TestEditorPendingCycle(t *testing.T) {
	m := send(t, newTestEditor(nil), keyTab)

	if m.Focus != m.pendingFocus() {
		t.Fatalf("Focus = %d, want pending %d", m.Focus, m.pendingFocus())
	}

	m = send(t, m, keyRight)
	if got := m.Editor.Pending(); got != "first_name" {
		t.Errorf("Pending() = %q, want first_name", got)
	}

	m = send(t, m, keyRight)
	if got := m.Editor.Pending(); got != "last_name" {
		t.Errorf("Pending() = %q, want last_name", got)
	}

	// Back past the first entry lands on the empty choice
	m = send(t, m, keyLeft, keyLeft)
	if got := m.Editor.Pending(); got != "" {
		t.Errorf("Pending() = %q, want empty", got)
	}

	// Wraps to the last catalog entry
	m = send(t, m, keyLeft)
	if got := m.Editor.Pending(); got != "state" {
		t.Errorf("Pending() = %q, want state", got)
	}
}

func TestEditorAddRow(t *testing.T) {
	m := send(t, newTestEditor(nil), keyTab, keyRight, keyTab)

	if m.Focus != m.addFocus() {
		t.Fatalf("Focus = %d, want add %d", m.Focus, m.addFocus())
	}

	m = send(t, m, keyEnter)

	if diff := cmp.Diff([]segment.Row{{Key: "first_name"}}, m.Editor.Rows()); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}
	// Focus stays on the add button, which moved down by one
	if m.Focus != m.addFocus() {
		t.Errorf("Focus = %d, want add %d", m.Focus, m.addFocus())
	}
}

func TestEditorAddEmptyPendingIgnored(t *testing.T) {
	m := send(t, newTestEditor(nil), keyTab, keyTab)

	m = send(t, m, keyEnter)

	if m.Editor.Len() != 0 {
		t.Errorf("rows = %d, want 0", m.Editor.Len())
	}
	if m.Focus != m.addFocus() {
		t.Errorf("Focus = %d, want add %d", m.Focus, m.addFocus())
	}
}

func TestEditorPendingSkipsUsedKeys(t *testing.T) {
	// Commit first_name, then go back to the pending selector
	m := send(t, newTestEditor(nil), keyTab, keyRight, keyTab, keyEnter)
	m.Focus = m.pendingFocus()

	// Pending still holds first_name, which is no longer offered
	m = send(t, m, keyRight)

	if got := m.Editor.Pending(); got != "last_name" {
		t.Errorf("Pending() = %q, want last_name", got)
	}
}

func TestEditorRowCycleSeesOwnValue(t *testing.T) {
	m := newTestEditor(nil)
	m.Editor.SetPendingSelection("first_name")
	m.Editor.CommitPendingRow()
	m.Editor.SetPendingSelection("last_name")
	m.Editor.CommitPendingRow()

	// Row 2 holds last_name; cycling left skips first_name (row 1) to empty
	m.Focus = 2
	m = send(t, m, keyLeft)

	row, err := m.Editor.Row(1)
	if err != nil {
		t.Fatalf("Row(1) error: %v", err)
	}
	if row.Key != "" {
		t.Errorf("row key = %q, want empty", row.Key)
	}

	m = send(t, m, keyRight)
	row, _ = m.Editor.Row(1)
	if row.Key != "last_name" {
		t.Errorf("row key = %q, want last_name", row.Key)
	}
}

func TestEditorSaveSuccess(t *testing.T) {
	var calls atomic.Int32
	var got segment.Segment
	s := submit.SubmitterFunc(func(_ context.Context, seg segment.Segment) error {
		calls.Add(1)
		got = seg
		return nil
	})

	m := send(t, newTestEditor(s), runes("VIPs"), keyTab, keyRight, keyTab, keyEnter)
	m.Focus = m.saveFocus()

	updated, cmd := m.Update(keyEnter)
	m = updated.(EditorModel)
	if !m.Submitting {
		t.Fatal("expected Submitting after save")
	}

	// Keys are ignored while the submission is in flight
	m = send(t, m, keyEsc)
	if m.Closed {
		t.Error("editor closed while submitting")
	}

	results := collect[submitResultMsg](cmd)
	if len(results) != 1 {
		t.Fatalf("got %d submit results, want 1", len(results))
	}
	m = send(t, m, results[0])

	if calls.Load() != 1 {
		t.Errorf("submit calls = %d, want 1", calls.Load())
	}
	want := segment.Segment{
		Name:   "VIPs",
		Fields: []segment.Field{{Key: "first_name", Label: "First Name", Resolved: true}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("submitted segment mismatch (-want +got):\n%s", diff)
	}
	if !m.Closed || m.Submitted == nil {
		t.Fatal("editor should close with a submitted segment")
	}
	if m.Editor.Len() != 0 || m.Editor.Name() != "" {
		t.Error("editor state should be discarded after success")
	}
}

func TestEditorSaveFailureKeepsState(t *testing.T) {
	s := submit.SubmitterFunc(func(context.Context, segment.Segment) error {
		return submit.NewHTTPError("http://sink.test/segments", 500, "boom")
	})

	m := send(t, newTestEditor(s), runes("VIPs"), keyTab, keyRight, keyTab, keyEnter)
	m.Focus = m.saveFocus()

	_, cmd := m.Update(keyEnter)
	results := collect[submitResultMsg](cmd)
	if len(results) != 1 {
		t.Fatalf("got %d submit results, want 1", len(results))
	}

	m.Submitting = true
	m = send(t, m, results[0])

	if m.Closed {
		t.Error("editor should stay open after failure")
	}
	if m.Submitting {
		t.Error("Submitting should be cleared")
	}
	if !submit.IsTransportError(m.LastError) {
		t.Errorf("LastError = %v, want transport error", m.LastError)
	}
	if m.Editor.Len() != 1 || m.Editor.Name() != "VIPs" {
		t.Errorf("state lost: rows=%d name=%q", m.Editor.Len(), m.Editor.Name())
	}
	if view := m.View(); !strings.Contains(view, "HTTP 500") {
		t.Errorf("view should show the error, got:\n%s", view)
	}
}

func TestEditorCancel(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
	}{
		{"esc", []tea.Msg{keyEsc}},
		{"cancel button", []tea.Msg{keyTab, keyTab, keyTab, keyTab, keyEnter}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestEditor(nil)
			m.Editor.SetName("draft")
			m.Editor.SetPendingSelection("city")
			m.Editor.CommitPendingRow()
			// One row shifts the buttons by one
			if tt.name == "cancel button" {
				tt.keys = append([]tea.Msg{keyTab}, tt.keys...)
			}

			m = send(t, m, tt.keys...)

			if !m.Closed {
				t.Fatal("editor should be closed")
			}
			if m.Submitted != nil {
				t.Error("Submitted should be nil after cancel")
			}
			if m.Editor.Len() != 0 || m.Editor.Name() != "" || m.Editor.Pending() != "" {
				t.Error("editor state should be discarded")
			}
		})
	}
}

func TestEditorViewPlaceholders(t *testing.T) {
	m := newTestEditor(nil)
	m.Editor.SetPendingSelection("city")
	m.Editor.CommitPendingRow()
	m.Editor.SetPendingSelection("")
	m.Editor.CommitPendingRow()

	view := m.View()

	for _, want := range []string{"City", pendingPlaceholder, "+ Add new schema", "Save the Segment", "Cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEditorSubmitErrorNotMutating(t *testing.T) {
	m := newTestEditor(nil)
	m.Editor.SetPendingSelection("age")
	m.Editor.CommitPendingRow()
	before := m.Editor.Serialize()

	m = send(t, m, submitResultMsg{segment: before, err: errors.New("offline")})

	if diff := cmp.Diff(before, m.Editor.Serialize()); diff != "" {
		t.Errorf("editor changed after failure (-want +got):\n%s", diff)
	}
}
