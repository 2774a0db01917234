// Package sink implements a small HTTP receiver for submitted segments.
//
// It stands in for the webhook a segment form posts to, which makes the
// submit path testable end to end on a laptop:
//
//	POST /segments      accept {"segment_name": ..., "schema": [...]} and reply 201 {"id": ...}
//	GET  /segments      list received records, oldest first
//	GET  /segments/{id} fetch one record
//	GET  /ws            websocket feed, one JSON record per text message
//	GET  /healthz       record and watcher counts
//
// Records live in a bounded in-memory History; nothing is written to disk.
// When Config.Advertise is set the sink registers itself over mDNS so
// `segmentform discover` can find it.
package sink
