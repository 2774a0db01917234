// Package tui implements the interactive segment editor using Bubble Tea.
//
// The application has two screens. The launcher holds the "Save segment"
// button and shows the outcome of the last editor session. The editor is
// the popup where the user names the segment, adds schema rows drawn from
// the catalog and saves or cancels.
//
// # Usage
//
//	err := tui.Run(tui.Options{
//	    Catalog:  segment.DefaultCatalog(),
//	    Endpoint: "http://localhost:8080/segments",
//	    Timeout:  10 * time.Second,
//	})
//
// # Editor navigation
//
// Tab and the arrow keys move between the name input, each schema row,
// the pending selector and the buttons. Left and right cycle a selector
// through the catalog entries not chosen by any other row. Enter on
// "+ Add new schema" appends the pending selection as a new row; an
// empty pending selection is ignored.
//
// Saving runs a single submission in the background. On success the
// editor closes and its rows are discarded. On failure the editor stays
// open with the error shown and nothing lost, so the user can retry.
package tui
