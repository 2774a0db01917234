package segment

// Row is one slot in the schema list. An empty Key means nothing is chosen.
type Row struct {
	Key string
}

// Editor manages the ordered schema list for one segment.
type Editor struct {
	catalog *Catalog
	rows    []Row
	pending string
	name    string
}

// NewEditor creates an editor over catalog with no rows.
// A nil catalog falls back to DefaultCatalog.
func NewEditor(catalog *Catalog) *Editor {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Editor{catalog: catalog}
}

// Catalog returns the catalog the editor draws from.
func (e *Editor) Catalog() *Catalog {
	return e.catalog
}

// SetName sets the segment name.
func (e *Editor) SetName(name string) {
	e.name = name
}

// Name returns the segment name.
func (e *Editor) Name() string {
	return e.name
}

// Rows returns a copy of the current rows in insertion order.
func (e *Editor) Rows() []Row {
	out := make([]Row, len(e.rows))
	copy(out, e.rows)
	return out
}

// Len returns the number of rows.
func (e *Editor) Len() int {
	return len(e.rows)
}

// Row returns the row at index.
func (e *Editor) Row(index int) (Row, error) {
	if index < 0 || index >= len(e.rows) {
		return Row{}, &RowIndexError{Index: index, Len: len(e.rows)}
	}
	return e.rows[index], nil
}

// Pending returns the value held by the "add schema" selector.
func (e *Editor) Pending() string {
	return e.pending
}

// AvailableOptionsFor returns the catalog entries a selector currently
// holding current may offer: every entry not chosen by any row, plus the
// entry for current itself. Pass "" for the "add schema" selector.
//
// The result is recomputed from the rows on every call and follows
// catalog order.
func (e *Editor) AvailableOptionsFor(current string) []Entry {
	used := make(map[string]struct{}, len(e.rows))
	for _, r := range e.rows {
		if r.Key != "" {
			used[r.Key] = struct{}{}
		}
	}

	entries := e.catalog.entries
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if _, taken := used[entry.Key]; taken && entry.Key != current {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// ChangeRowSelection replaces the value of the row at index.
//
// key is expected to come from AvailableOptionsFor(row.Key); this is not
// re-checked here, so a caller offering other values can break uniqueness.
func (e *Editor) ChangeRowSelection(index int, key string) error {
	if index < 0 || index >= len(e.rows) {
		return &RowIndexError{Index: index, Len: len(e.rows)}
	}
	e.rows[index].Key = key
	return nil
}

// SetPendingSelection sets the value of the "add schema" selector.
func (e *Editor) SetPendingSelection(key string) {
	e.pending = key
}

// CommitPendingRow appends a row holding the pending value and reports
// whether a row was added. An empty pending value is ignored. The pending
// value is kept after a commit.
func (e *Editor) CommitPendingRow() bool {
	if e.pending == "" {
		return false
	}
	e.rows = append(e.rows, Row{Key: e.pending})
	return true
}

// Serialize builds the segment from the non-empty rows, in row order.
// Keys missing from the catalog yield a field with an empty label and
// Resolved set to false.
func (e *Editor) Serialize() Segment {
	fields := make([]Field, 0, len(e.rows))
	for _, r := range e.rows {
		if r.Key == "" {
			continue
		}
		entry, ok := e.catalog.Lookup(r.Key)
		fields = append(fields, Field{
			Key:      r.Key,
			Label:    entry.Label,
			Resolved: ok,
		})
	}
	return Segment{Name: e.name, Fields: fields}
}

// Reset discards rows, pending selection and name.
func (e *Editor) Reset() {
	e.rows = nil
	e.pending = ""
	e.name = ""
}
