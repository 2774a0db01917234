package sink

import (
	"fmt"
	"testing"
)

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(2)

	for i := 1; i <= 3; i++ {
		h.Add(Record{ID: fmt.Sprintf("r%d", i)})
	}

	got := h.List()
	if len(got) != 2 {
		t.Fatalf("Len = %d, want 2", len(got))
	}
	if got[0].ID != "r2" || got[1].ID != "r3" {
		t.Errorf("List() = [%s %s], want [r2 r3]", got[0].ID, got[1].ID)
	}
	if _, ok := h.Get("r1"); ok {
		t.Error("Get(r1) should fail after eviction")
	}
}

func TestHistory_ListIsCopy(t *testing.T) {
	h := NewHistory(0)
	h.Add(Record{ID: "a"})

	list := h.List()
	list[0].ID = "mutated"

	if r, _ := h.Get("a"); r.ID != "a" {
		t.Error("mutating List() result changed the history")
	}
}

func TestNewHistory_DefaultSize(t *testing.T) {
	h := NewHistory(-1)
	if h.max != DefaultHistorySize {
		t.Errorf("max = %d, want %d", h.max, DefaultHistorySize)
	}
}
