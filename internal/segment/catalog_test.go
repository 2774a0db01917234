package segment

import (
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	if c.Len() != 7 {
		t.Fatalf("Len() = %d, want 7", c.Len())
	}

	wantOrder := []string{"first_name", "last_name", "gender", "age", "account_name", "city", "state"}
	for i, e := range c.Entries() {
		if e.Key != wantOrder[i] {
			t.Errorf("entry %d key = %s, want %s", i, e.Key, wantOrder[i])
		}
	}

	if c.Label("account_name") != "Account Name" {
		t.Errorf("Label(account_name) = %q, want Account Name", c.Label("account_name"))
	}
}

func TestNewCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantErr string
	}{
		{
			name:    "empty key",
			entries: []Entry{{Key: "", Label: "Blank"}},
			wantErr: "key cannot be empty",
		},
		{
			name: "duplicate key",
			entries: []Entry{
				{Key: "city", Label: "City"},
				{Key: "city", Label: "Town"},
			},
			wantErr: "duplicate key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.entries...)
			if err == nil {
				t.Fatal("NewCatalog() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewCatalog() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := MustCatalog(Entry{Key: "plan", Label: "Plan"}, Entry{Key: "region", Label: "Region"})

	e, ok := c.Lookup("region")
	if !ok || e.Label != "Region" {
		t.Errorf("Lookup(region) = %+v, %v", e, ok)
	}

	if _, ok := c.Lookup("missing"); ok {
		t.Error("Lookup(missing) ok = true, want false")
	}

	if c.Has("missing") {
		t.Error("Has(missing) = true")
	}
	if c.Label("missing") != "" {
		t.Errorf("Label(missing) = %q, want empty", c.Label("missing"))
	}
}

func TestCatalog_EntriesReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	entries := c.Entries()
	entries[0].Key = "mutated"

	if c.Entries()[0].Key != "first_name" {
		t.Error("mutating Entries() result changed the catalog")
	}
}

func TestMustCatalog_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCatalog() with duplicate keys did not panic")
		}
	}()
	MustCatalog(Entry{Key: "a"}, Entry{Key: "a"})
}
