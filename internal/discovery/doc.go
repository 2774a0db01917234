// Package discovery finds and advertises segment sinks over mDNS.
//
// A sink registers itself as a "_segmentsink._tcp" service with TXT
// records describing where it accepts segments:
//
//	path=/segments   submission path
//	watch=/ws        websocket live feed
//	version=1.0.0    sink build
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	sinks, err := scanner.Scan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, sink := range sinks {
//	    fmt.Println(sink.EndpointURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Sinks must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
