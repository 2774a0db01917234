// Package submit sends finished segments to a remote endpoint.
//
// A submission is a single HTTP POST of the segment's JSON wire payload.
// There is no retry: the caller gets exactly one outcome and decides what to
// do with it. The interactive editor keeps its rows and name on failure so
// the user can try again.
//
// # Usage Example
//
//	client := submit.NewClient("https://hooks.example.com/segments")
//	client.SetTimeout(5 * time.Second)
//
//	if err := client.Submit(ctx, editor.Serialize()); err != nil {
//	    fmt.Println(submit.ShortMessage(err))
//	    for _, tip := range submit.TroubleshootingHints(err) {
//	        fmt.Println("  •", tip)
//	    }
//	}
//
// # Errors
//
// Every failure is a *TransportError. Its Type separates network problems
// (timeout, connection refused, DNS) from non-2xx responses, which carry the
// status code and a short excerpt of the response body.
package submit
