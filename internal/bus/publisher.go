// Package bus publishes decoded frames to NATS. One message per frame,
// fire and forget: a failed publish is reported to the caller and the frame
// is gone.
package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/camgate/camgate/internal/camera"
	"github.com/camgate/camgate/internal/logging"
)

// ErrNotConnected is returned by Publish before Connect or after Close.
var ErrNotConnected = errors.New("not connected to message bus")

// FramePublisher publishes frames to a NATS subject.
type FramePublisher struct {
	url     string
	subject string
	logger  logging.Logger

	mu   sync.RWMutex
	conn *nats.Conn
}

// NewFramePublisher builds a publisher for the given server URL and subject.
func NewFramePublisher(url, subject string, logger logging.Logger) *FramePublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &FramePublisher{url: url, subject: subject, logger: logger}
}

// Connect establishes the NATS connection. Reconnects are handled by the
// client; frames published while disconnected are buffered or dropped by the
// client's own policy, never retried by the caller.
func (p *FramePublisher) Connect() error {
	opts := []nats.Option{
		nats.Name("camgate"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				p.logger.Warn("Bus disconnected", "error", err)
			} else {
				p.logger.Debug("Bus disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			p.logger.Info("Bus reconnected")
		}),
	}

	conn, err := nats.Connect(p.url, opts...)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
	p.logger.Info("Connected to message bus", "url", p.url, "subject", p.subject)
	return nil
}

// Publish sends one frame. Never blocks on consumers.
func (p *FramePublisher) Publish(frame camera.Frame) error {
	p.mu.RLock()
	conn := p.conn
	p.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.PublishMsg(NewFrameMsg(p.subject, frame))
}

// Close flushes and drops the connection.
func (p *FramePublisher) Close() {
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Flush(); err != nil {
		p.logger.Warn("Failed to flush bus connection", "error", err)
	}
	conn.Close()
	p.logger.Debug("Bus connection closed")
}
