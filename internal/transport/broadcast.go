// internal/transport/broadcast.go
package transport

import (
	"context"
	"time"

	"github.com/jason-s-yu/skat/internal/wire"
	"github.com/sirupsen/logrus"
)

// BroadcastTimeout bounds each individual send of a broadcast.
var BroadcastTimeout = 3 * time.Second

// Broadcaster fans messages out to every remote participant. Sends are
// independent: a failure is logged and the remaining connections still receive
// the message.
type Broadcaster struct {
	conns  []Conn
	logger logrus.FieldLogger
}

// NewBroadcaster builds a broadcaster over conns, in seat order.
func NewBroadcaster(conns []Conn, logger logrus.FieldLogger) *Broadcaster {
	return &Broadcaster{conns: conns, logger: logger}
}

// Text sends a status line to everyone and echoes it to the server log.
func (b *Broadcaster) Text(ctx context.Context, line string) {
	b.logger.Info(line)
	b.Send(ctx, wire.TextLine(line))
}

// Send delivers m to every connection, best effort.
func (b *Broadcaster) Send(ctx context.Context, m wire.Message) {
	for _, c := range b.conns {
		SendBestEffort(ctx, c, m, b.logger)
	}
}

// SendBestEffort sends m to a single observer, logging instead of failing.
func SendBestEffort(ctx context.Context, c Conn, m wire.Message, logger logrus.FieldLogger) {
	sendCtx, cancel := context.WithTimeout(ctx, BroadcastTimeout)
	defer cancel()
	if err := c.Send(sendCtx, m); err != nil {
		logger.WithFields(logrus.Fields{
			"remote": c.RemoteAddr(),
			"kind":   m.Kind,
			"tag":    m.Tag,
		}).Warnf("broadcast send failed: %v", err)
	}
}
