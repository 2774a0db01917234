package submit

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

// timeoutError implements net.Error with Timeout() == true
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError(t *testing.T) {
	const endpoint = "http://sink.local/segments"

	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{
			name: "timeout",
			err: &url.Error{Op: "Post", URL: endpoint, Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: timeoutError{},
			}},
			wantType: ErrTypeTimeout,
		},
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantType: ErrTypeTimeout,
		},
		{
			name:     "canceled",
			err:      &url.Error{Op: "Post", URL: endpoint, Err: context.Canceled},
			wantType: ErrTypeCanceled,
		},
		{
			name:     "dns",
			err:      &net.DNSError{Err: "no such host", Name: "sink.local", IsNotFound: true},
			wantType: ErrTypeDNS,
		},
		{
			name: "connection refused",
			err: &url.Error{Op: "Post", URL: endpoint, Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED,
			}},
			wantType: ErrTypeConnectionRefused,
		},
		{
			name: "host unreachable",
			err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH,
			},
			wantType: ErrTypeNetwork,
		},
		{
			name:     "generic",
			err:      errors.New("connection reset"),
			wantType: ErrTypeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tErr := ClassifyNetworkError(tt.err, endpoint)
			if tErr == nil {
				t.Fatal("ClassifyNetworkError() = nil")
			}
			if tErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", tErr.Type, tt.wantType)
			}
			if tErr.Endpoint != endpoint {
				t.Errorf("Endpoint = %s, want %s", tErr.Endpoint, endpoint)
			}
		})
	}
}

func TestClassifyNetworkError_Nil(t *testing.T) {
	if ClassifyNetworkError(nil, "x") != nil {
		t.Error("ClassifyNetworkError(nil) should return nil")
	}
}

func TestTransportError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewNetworkError("POST request failed", "http://x", cause)

	if !strings.Contains(err.Error(), "POST request failed") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error() = %q, want message and cause", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestErrorType_String(t *testing.T) {
	if ErrTypeHTTP.String() != "HTTP Error" {
		t.Errorf("ErrTypeHTTP.String() = %s", ErrTypeHTTP.String())
	}
	if ErrorType(99).String() != "ErrorType(99)" {
		t.Errorf("ErrorType(99).String() = %s", ErrorType(99).String())
	}
}

func TestHelpers_NonTransportError(t *testing.T) {
	err := errors.New("plain")

	if IsTransportError(err) || IsNetworkError(err) || IsTimeout(err) || IsHTTPError(err) {
		t.Error("helpers should be false for plain errors")
	}
	if StatusCode(err) != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", StatusCode(err))
	}
	if ShortMessage(err) != "plain" {
		t.Errorf("ShortMessage(plain) = %q", ShortMessage(err))
	}
}

func TestShortMessageAndHints(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantShort string
		wantHint  string
	}{
		{
			name:      "http 4xx",
			err:       NewHTTPError("http://x", 422, ""),
			wantShort: "HTTP 422",
			wantHint:  "rejected the payload",
		},
		{
			name:      "http 5xx",
			err:       NewHTTPError("http://x", 502, ""),
			wantShort: "HTTP 502",
			wantHint:  "receiving service logs",
		},
		{
			name:      "refused",
			err:       &TransportError{Type: ErrTypeConnectionRefused, Endpoint: "http://x"},
			wantShort: "refused",
			wantHint:  "segment-sink serve",
		},
		{
			name:      "timeout",
			err:       &TransportError{Type: ErrTypeTimeout, Endpoint: "http://x"},
			wantShort: "timeout",
			wantHint:  "--timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortMessage(tt.err); !strings.Contains(got, tt.wantShort) {
				t.Errorf("ShortMessage() = %q, want containing %q", got, tt.wantShort)
			}
			hints := strings.Join(TroubleshootingHints(tt.err), "\n")
			if !strings.Contains(hints, tt.wantHint) {
				t.Errorf("TroubleshootingHints() = %q, want containing %q", hints, tt.wantHint)
			}
		})
	}
}
