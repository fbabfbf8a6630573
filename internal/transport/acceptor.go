// internal/transport/acceptor.go
package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Acceptor collects remote connections for a single table. The HTTP side offers
// connections as they arrive; the game takes exactly the number of seats it
// needs with Accept.
type Acceptor struct {
	seats  int
	conns  chan Conn
	logger logrus.FieldLogger

	mu      sync.Mutex
	offered int
	closed  bool
	onClose []func() error
}

// NewAcceptor builds an acceptor for seats remote participants.
func NewAcceptor(seats int, logger logrus.FieldLogger) *Acceptor {
	return &Acceptor{
		seats:  seats,
		conns:  make(chan Conn, seats),
		logger: logger,
	}
}

// OnClose registers a release hook (e.g. shutting down the HTTP listener) that
// runs when the acceptor is closed.
func (a *Acceptor) OnClose(fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onClose = append(a.onClose, fn)
}

// Full reports whether every seat has been offered a connection.
func (a *Acceptor) Full() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed || a.offered >= a.seats
}

// Offer hands a freshly connected participant to the game. It never blocks.
func (a *Acceptor) Offer(c Conn) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if a.offered >= a.seats {
		return ErrTableFull
	}
	a.offered++
	a.conns <- c
	a.logger.WithFields(logrus.Fields{
		"remote": c.RemoteAddr(),
		"seat":   a.offered,
	}).Info("participant connected")
	return nil
}

// Accept blocks until n connections have been offered.
func (a *Acceptor) Accept(ctx context.Context, n int) ([]Conn, error) {
	if n > a.seats {
		return nil, fmt.Errorf("acceptor has %d seats, %d requested", a.seats, n)
	}
	out := make([]Conn, 0, n)
	for len(out) < n {
		select {
		case c := <-a.conns:
			out = append(out, c)
		case <-ctx.Done():
			for _, c := range out {
				c.Close()
			}
			return nil, ctx.Err()
		}
	}
	return out, nil
}

// Close stops accepting and runs the release hooks once.
func (a *Acceptor) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	hooks := a.onClose
	a.mu.Unlock()

	var firstErr error
	for _, fn := range hooks {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
