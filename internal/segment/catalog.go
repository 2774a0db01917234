package segment

import "fmt"

// Entry is one selectable field in a catalog.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Catalog is a fixed, ordered set of entries, unique by key.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog builds a catalog from entries, keeping their order.
// Empty keys and duplicate keys are rejected.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("catalog entry %d: key cannot be empty", i)
		}
		if _, exists := c.index[e.Key]; exists {
			return nil, fmt.Errorf("catalog entry %d: duplicate key %q", i, e.Key)
		}
		c.index[e.Key] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	return c, nil
}

// MustCatalog is like NewCatalog but panics on invalid input.
// Intended for package-level catalogs built from literals.
func MustCatalog(entries ...Entry) *Catalog {
	c, err := NewCatalog(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultEntries are the seven fields offered when no catalog is configured.
var DefaultEntries = []Entry{
	{Key: "first_name", Label: "First Name"},
	{Key: "last_name", Label: "Last Name"},
	{Key: "gender", Label: "Gender"},
	{Key: "age", Label: "Age"},
	{Key: "account_name", Label: "Account Name"},
	{Key: "city", Label: "City"},
	{Key: "state", Label: "State"},
}

// DefaultCatalog returns a catalog of DefaultEntries.
func DefaultCatalog() *Catalog {
	return MustCatalog(DefaultEntries...)
}

// Entries returns a copy of the catalog entries in order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry for key.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	i, ok := c.index[key]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Has reports whether key is in the catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Label returns the label for key, or "" when key is unknown.
func (c *Catalog) Label(key string) string {
	e, _ := c.Lookup(key)
	return e.Label
}
