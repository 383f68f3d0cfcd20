package upnp

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates a bad HTTP status or a fatal socket error
	ErrTypeTransport ErrorType = iota
	// ErrTypeMalformedResponse indicates a SOAP response without the expected structure
	ErrTypeMalformedResponse
	// ErrTypeMalformedTopology indicates a zone topology document that ended mid-structure
	ErrTypeMalformedTopology
	// ErrTypeNoDeviceFound indicates that discovery timed out with zero responders
	ErrTypeNoDeviceFound
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeMalformedResponse:
		return "Malformed Response"
	case ErrTypeMalformedTopology:
		return "Malformed Topology"
	case ErrTypeNoDeviceFound:
		return "No Device Found"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is the error returned by every protocol operation in this module
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (transport errors from a response)
	Body       string    // Response body (transport errors from a response)
	Addr       string    // Device address, when known
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// WithAddr records the device address the error concerns and returns e
func (e *Error) WithAddr(addr string) *Error {
	e.Addr = addr
	return e
}

// NewTransportError creates a transport error for a socket or network failure
func NewTransportError(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewStatusError creates a transport error for a non-2xx HTTP response
func NewStatusError(statusCode int, body string) *Error {
	return &Error{
		Type:       ErrTypeTransport,
		Message:    fmt.Sprintf("unexpected HTTP status %d", statusCode),
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewMalformedResponseError creates an error for a SOAP response lacking required structure
func NewMalformedResponseError(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeMalformedResponse,
		Message: message,
		Err:     err,
	}
}

// NewMalformedTopologyError creates an error for a truncated or incomplete topology document
func NewMalformedTopologyError(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeMalformedTopology,
		Message: message,
		Err:     err,
	}
}

// NewNoDeviceFoundError creates the error returned when discovery finds nothing
func NewNoDeviceFoundError(message string) *Error {
	return &Error{
		Type:    ErrTypeNoDeviceFound,
		Message: message,
	}
}

func hasType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool { return hasType(err, ErrTypeTransport) }

// IsMalformedResponse checks if an error is a malformed SOAP response error
func IsMalformedResponse(err error) bool { return hasType(err, ErrTypeMalformedResponse) }

// IsMalformedTopology checks if an error is a malformed topology error
func IsMalformedTopology(err error) bool { return hasType(err, ErrTypeMalformedTopology) }

// IsNoDeviceFound checks if an error means discovery found no devices
func IsNoDeviceFound(err error) bool { return hasType(err, ErrTypeNoDeviceFound) }

// networkCause returns a short description of common socket failures
func networkCause(err error) string {
	if os.IsTimeout(err) {
		return "timed out"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "cannot resolve " + dnsErr.Name
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.Is(err, syscall.EHOSTUNREACH):
		return "host unreachable"
	case errors.Is(err, syscall.ENETUNREACH):
		return "network unreachable"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return networkCause(urlErr.Err)
	}
	return ""
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Type {
	case ErrTypeTransport:
		if e.StatusCode != 0 {
			if e.Addr != "" {
				return fmt.Sprintf("Player at %s returned HTTP %d", e.Addr, e.StatusCode)
			}
			return fmt.Sprintf("Player returned HTTP %d", e.StatusCode)
		}
		msg := "Network error"
		if e.Addr != "" {
			msg += " reaching " + e.Addr
		}
		if cause := networkCause(e.Err); cause != "" {
			return msg + " - " + cause
		}
		return msg + " - check connection"
	case ErrTypeMalformedResponse:
		return "Player sent an unexpected SOAP response"
	case ErrTypeMalformedTopology:
		return "Player sent an incomplete zone topology"
	case ErrTypeNoDeviceFound:
		return "No players responded to discovery"
	default:
		return e.Message
	}
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Type {
	case ErrTypeNoDeviceFound:
		return strings.Join([]string{
			"No player answered the multicast search.",
			"Troubleshooting:",
			"  • Check that this computer is on the same network as the players",
			"  • Allow UDP port 1900 (SSDP) through the local firewall",
			"  • Try increasing --timeout",
			"  • Try --mdns, or --device <ip> to skip discovery",
		}, "\n")

	case ErrTypeTransport:
		if e.StatusCode >= 500 {
			return strings.Join([]string{
				fmt.Sprintf("The player rejected the command (HTTP %d).", e.StatusCode),
				"UPnP faults are reported as HTTP 500 with a SOAP fault body.",
				"Troubleshooting:",
				"  • Commands must be sent to the group coordinator",
				"  • Check the player is not in the middle of a software update",
			}, "\n")
		}
		return strings.Join([]string{
			"Could not talk to the player over HTTP (port 1400).",
			"Troubleshooting:",
			"  • Verify the player IP address",
			"  • Ensure the player is powered on",
		}, "\n")

	case ErrTypeMalformedResponse, ErrTypeMalformedTopology:
		return strings.Join([]string{
			"The player's response did not have the expected shape.",
			"Run with --log-level debug to see the raw exchange.",
		}, "\n")

	default:
		return "An error occurred. Please check the error message for details."
	}
}
