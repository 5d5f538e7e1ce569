// Package singleinstance lets one resident process own capture and lets
// run-once invocations hand it a Selection over loopback TCP.
//
// Wire format, one request per connection:
//
//	PING\n                 -> PONG\n
//	CAPTURE <selection>\n  -> SUCCESS\n<path> | ERROR\n<message>
package singleinstance

import (
	"context"
	"errors"

	"github.com/sprintrstudio/openCap/src/region"
)

// Server owns the TCP endpoint and answers run-once requests.
type Server interface {
	// Start listens on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	Request() Request
	// RespondSuccess sends success followed by the saved path (may be empty).
	RespondSuccess(path string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	Close() error
}

// Request is a single delegated capture.
type Request struct {
	Selection region.Selection
}

// Client attempts to delegate a run-once capture to a resident server.
type Client interface {
	// TryRunOnce scans the port range, performs the handshake and delegates sel.
	// If no resident is found, returns delegated=false, err=nil.
	TryRunOnce(ctx context.Context, sel region.Selection) (delegated bool, path string, err error)
}

// RemoteError is an ERROR reply from the resident. The request reached it
// and failed there, so callers must not repeat the capture locally.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// IsRemote reports whether err came back from the resident rather than
// from the transport.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

func NewServer() Server { return newTcpServer() }

func NewClient() Client { return newTcpClient() }
