package mq

import (
	"io"
)

// Dialer represents a function which returns a connection and an error.
type Dialer func() (Connection, error)

// Error represents an error reported by the broker.
type Error interface {
	// Code returns the constant code from the specification
	Code() int
	// Reason returns the description of the error
	Reason() string
	// Recover returns true when this error can be recovered by retrying later or with different parameters
	Recover() bool
	// FromServer returns true when initiated from the server, false when from this library
	FromServer() bool
}

// Connection represents a broker connection, the opaque handle
// backends are built on top of.
//
// Closing a connection tears down every backend derived from it;
// Close is idempotent.
type Connection interface {
	io.Closer

	// IsClosed determines if the connection is closed.
	IsClosed() bool
}
