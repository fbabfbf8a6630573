// internal/transport/websocket.go
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/skat/internal/wire"
)

// WriteTimeout bounds a single frame write when the caller's context has no deadline.
var WriteTimeout = 5 * time.Second

type inbound struct {
	msg wire.Message
	err error
}

// WSConn carries wire messages as WebSocket text frames. A single goroutine reads
// the socket so control frames are always serviced; decoded frames are handed to
// Receive through a channel.
type WSConn struct {
	c      *websocket.Conn
	name   string
	remote string

	inbox     chan inbound
	done      chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc
}

// NewWSConn wraps an accepted WebSocket and starts its reader.
func NewWSConn(c *websocket.Conn, name, remote string) *WSConn {
	ctx, cancel := context.WithCancel(context.Background())
	w := &WSConn{
		c:      c,
		name:   name,
		remote: remote,
		inbox:  make(chan inbound, 8),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go w.readLoop(ctx)
	return w
}

func (w *WSConn) readLoop(ctx context.Context) {
	defer close(w.inbox)
	for {
		typ, data, err := w.c.Read(ctx)
		if err != nil {
			w.push(inbound{err: fmt.Errorf("read from %s: %w", w.remote, err)})
			return
		}
		if typ != websocket.MessageText {
			w.push(inbound{err: fmt.Errorf("%w: binary frame", wire.ErrMalformed)})
			continue
		}
		m, err := wire.Unmarshal(data)
		w.push(inbound{msg: m, err: err})
	}
}

func (w *WSConn) push(in inbound) {
	select {
	case w.inbox <- in:
	case <-w.done:
	}
}

// Send writes one message.
func (w *WSConn) Send(ctx context.Context, m wire.Message) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	data, err := wire.Marshal(m)
	if err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, WriteTimeout)
		defer cancel()
	}
	if err := w.c.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write to %s: %w", w.remote, err)
	}
	return nil
}

// Receive returns the next decoded message.
func (w *WSConn) Receive(ctx context.Context) (wire.Message, error) {
	select {
	case <-w.done:
		return wire.Message{}, ErrClosed
	default:
	}
	select {
	case in, ok := <-w.inbox:
		if !ok {
			return wire.Message{}, ErrClosed
		}
		return in.msg, in.err
	case <-w.done:
		return wire.Message{}, ErrClosed
	case <-ctx.Done():
		return wire.Message{}, ctx.Err()
	}
}

func (w *WSConn) Name() string       { return w.name }
func (w *WSConn) RemoteAddr() string { return w.remote }

// Done is closed once Close has been called.
func (w *WSConn) Done() <-chan struct{} { return w.done }

// Close ends the session with a normal closure.
func (w *WSConn) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.c.Close(websocket.StatusNormalClosure, "game over")
		w.cancel()
	})
	return err
}
