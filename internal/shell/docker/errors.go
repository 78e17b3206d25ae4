package docker

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Socket errors
	ErrSocketNotFound   = errors.New("socket file not found")
	ErrSocketPermission = errors.New("access to socket file denied")
	ErrSocketTimeout    = errors.New("socket connection timed out")

	// Lookup errors
	ErrNoContainerMatched        = errors.New("no container matched")
	ErrMultipleContainersMatched = errors.New("multiple containers matched")

	// Version errors
	ErrAPIVersionUnsupported = errors.New("daemon does not support required API version")
)

// TransportError wraps a socket-level failure with the operation and the
// socket path it occurred on. Transport failures are always fatal to the
// check and reported as UNKNOWN.
type TransportError struct {
	Op         string // Operation that failed (connect, write, read)
	SocketPath string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.SocketPath, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response the client could not make sense of after
// the transport asserted completeness: a malformed status line or an
// unparsable payload. Fatal, reported as UNKNOWN.
type ProtocolError struct {
	Endpoint string
	Reason   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s", e.Endpoint, e.Reason)
}

// RemoteError carries a non-2xx status reported by the daemon itself,
// including its JSON error body verbatim. This is a legitimate
// remote-reported condition, not a transport fault: fatal, CRITICAL.
type RemoteError struct {
	Endpoint   string
	StatusCode int
	APIVersion string
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("daemon API v%s returned HTTP %d while fetching %s: %s",
		e.APIVersion, e.StatusCode, e.Endpoint, e.Body)
}

// ShapeError reports a JSON field that is absent or of an unexpected shape.
// The daemon answered, so this is not a transport fault; the caller decides
// whether it maps to CRITICAL (container check) or UNKNOWN (engine check).
type ShapeError struct {
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unexpected shape in API response: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("unexpected shape in API response: missing field %q", e.Field)
}
