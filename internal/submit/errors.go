package submit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of a submission failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (host unreachable, reset, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the endpoint refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-success HTTP status
	ErrTypeHTTP
	// ErrTypeEncode indicates the segment could not be encoded or the request built
	ErrTypeEncode
	// ErrTypeCanceled indicates the caller canceled the submission
	ErrTypeCanceled
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeEncode:
		return "Encode Error"
	case ErrTypeCanceled:
		return "Canceled"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// TransportError describes a failed submission attempt
type TransportError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (ErrTypeHTTP only)
	Body       string    // Response body excerpt (ErrTypeHTTP only)
	Err        error     // Underlying error (if any)
	Endpoint   string    // Endpoint the segment was sent to
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes an error returned by the HTTP client
func ClassifyNetworkError(err error, endpoint string) *TransportError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{
			Type:     ErrTypeTimeout,
			Message:  "Request timed out",
			Err:      err,
			Endpoint: endpoint,
		}
	}

	if errors.Is(err, context.Canceled) {
		return &TransportError{
			Type:     ErrTypeCanceled,
			Message:  "Submission canceled",
			Err:      err,
			Endpoint: endpoint,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{
			Type:     ErrTypeDNS,
			Message:  fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:      err,
			Endpoint: endpoint,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &TransportError{
				Type:     ErrTypeConnectionRefused,
				Message:  "Endpoint refused connection",
				Err:      err,
				Endpoint: endpoint,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &TransportError{
				Type:     ErrTypeNetwork,
				Message:  "Host unreachable",
				Err:      err,
				Endpoint: endpoint,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &TransportError{
				Type:     ErrTypeNetwork,
				Message:  "Network unreachable",
				Err:      err,
				Endpoint: endpoint,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return ClassifyNetworkError(urlErr.Err, endpoint)
	}

	return &TransportError{
		Type:     ErrTypeNetwork,
		Message:  "Network error occurred",
		Err:      err,
		Endpoint: endpoint,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, endpoint string, err error) *TransportError {
	classified := ClassifyNetworkError(err, endpoint)
	if classified == nil {
		return &TransportError{Type: ErrTypeNetwork, Message: message, Endpoint: endpoint}
	}
	classified.Message = message
	return classified
}

// NewHTTPError creates an error for a non-success response
func NewHTTPError(endpoint string, statusCode int, body string) *TransportError {
	return &TransportError{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("endpoint returned status %d", statusCode),
		StatusCode: statusCode,
		Body:       body,
		Endpoint:   endpoint,
	}
}

// NewEncodeError creates an error for a segment that could not be sent
func NewEncodeError(message string, endpoint string, err error) *TransportError {
	return &TransportError{
		Type:     ErrTypeEncode,
		Message:  message,
		Err:      err,
		Endpoint: endpoint,
	}
}

// AsTransportError extracts a *TransportError from err's chain
func AsTransportError(err error) (*TransportError, bool) {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}

// IsTransportError checks if an error is a submission transport error
func IsTransportError(err error) bool {
	_, ok := AsTransportError(err)
	return ok
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	tErr, ok := AsTransportError(err)
	if !ok {
		return false
	}
	switch tErr.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsTimeout checks if an error is a submission timeout
func IsTimeout(err error) bool {
	tErr, ok := AsTransportError(err)
	return ok && tErr.Type == ErrTypeTimeout
}

// IsHTTPError checks if an error is a non-success HTTP response
func IsHTTPError(err error) bool {
	tErr, ok := AsTransportError(err)
	return ok && tErr.Type == ErrTypeHTTP
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if tErr, ok := AsTransportError(err); ok {
		return tErr.StatusCode
	}
	return 0
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	tErr, ok := AsTransportError(err)
	if !ok {
		return err.Error()
	}

	switch tErr.Type {
	case ErrTypeTimeout:
		return "Endpoint not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Endpoint refused connection - is the sink running?"
	case ErrTypeDNS:
		return "Cannot resolve endpoint hostname"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Endpoint rejected segment (HTTP %d)", tErr.StatusCode)
	case ErrTypeEncode:
		return "Could not build the submission request"
	case ErrTypeCanceled:
		return "Submission canceled"
	default:
		return tErr.Message
	}
}

// TroubleshootingHints returns advice lines for a failed submission
func TroubleshootingHints(err error) []string {
	tErr, ok := AsTransportError(err)
	if !ok {
		return []string{"An unexpected error occurred. Please try again."}
	}

	switch tErr.Type {
	case ErrTypeTimeout:
		return []string{
			"The endpoint did not respond in time",
			"Try increasing --timeout",
			"Check that " + tErr.Endpoint + " is reachable",
		}
	case ErrTypeConnectionRefused:
		return []string{
			"Nothing is listening at " + tErr.Endpoint,
			"Start a local sink with: segment-sink serve",
			"Or run 'segmentform discover' to find one on the network",
		}
	case ErrTypeDNS:
		return []string{
			"Check the endpoint hostname for typos",
			"Use an IP address instead of a hostname",
		}
	case ErrTypeHTTP:
		if tErr.StatusCode >= 500 {
			return []string{
				"The endpoint failed while handling the segment",
				"Check the receiving service logs",
			}
		}
		return []string{
			"The endpoint rejected the payload",
			"Verify the endpoint expects segment_name/schema JSON",
		}
	case ErrTypeEncode:
		return []string{"Check the endpoint URL is a valid http(s) URL"}
	default:
		return []string{
			"Check your network connection",
			"Verify the endpoint URL with 'segmentform config show'",
		}
	}
}
