// Package segment implements the schema-list editor behind the segment form.
//
// A segment is a named, ordered collection of fields drawn from a fixed
// catalog. The Editor holds the rows chosen so far, the value sitting in the
// "add schema" selector, and the segment name. For each row it computes the
// options that row may still pick: every catalog entry nobody else has
// chosen, plus the row's own value.
//
// # Usage Example
//
//	editor := segment.NewEditor(segment.DefaultCatalog())
//	editor.SetName("VIPs")
//
//	editor.SetPendingSelection("first_name")
//	editor.CommitPendingRow()
//	editor.SetPendingSelection("city")
//	editor.CommitPendingRow()
//
//	// Options for the "add schema" selector: catalog minus first_name and city
//	opts := editor.AvailableOptionsFor("")
//
//	seg := editor.Serialize()
//	body, _ := json.Marshal(seg)
//	// {"segment_name":"VIPs","schema":[{"first_name":"First Name"},{"city":"City"}]}
//
// # Rows
//
// Rows are appended one at a time and never removed. A row's value can be
// changed at any time through ChangeRowSelection. The editor trusts its
// caller to only offer values from AvailableOptionsFor; it does not re-check
// uniqueness on change.
//
// # Thread Safety
//
// An Editor is driven by a single user and is not safe for concurrent use.
package segment
