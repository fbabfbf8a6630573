// internal/transport/conn.go
package transport

import (
	"context"
	"errors"

	"github.com/jason-s-yu/skat/internal/wire"
)

var (
	// ErrClosed is returned by Send and Receive once the connection is closed.
	ErrClosed = errors.New("connection closed")

	// ErrTableFull is returned by Acceptor.Offer when every remote seat is taken.
	ErrTableFull = errors.New("table is full")
)

// Conn is a reliable, message oriented connection to one remote participant.
// Send and Receive block until the message is written or read, or ctx ends.
type Conn interface {
	Send(ctx context.Context, m wire.Message) error
	Receive(ctx context.Context) (wire.Message, error)

	// Name is the display name the participant joined with, possibly empty.
	Name() string
	RemoteAddr() string
	Close() error
}
