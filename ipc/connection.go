package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection is one simulation client. Each AI player gets its own
// connection, identified after the hello handshake.
type Connection struct {
	t        Transport
	handlers map[string]Handler
	Player   string

	wmu sync.Mutex
}

func NewConnection(t Transport, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		t:        t,
		handlers: handlers,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.t.WriteEnvelope(env)
}

// ReadLoop blocks until the transport closes, errors or ctx is cancelled.
// It owns the transport lifetime so callers don't need to track cleanup. Handler
// errors are reported to the peer as an error message and the loop
// continues.
func (c *Connection) ReadLoop(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() { c.t.Close() })
	defer stop()
	defer c.t.Close()

	for {
		env, err := c.t.ReadEnvelope()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Info("connection closed", "player", c.Player)
			} else {
				slog.Warn("connection read ended", "player", c.Player, "error", err)
			}
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type, "player", c.Player)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "player", c.Player, "error", err)
			if err := c.Send(TypeError, ErrorMessage{Message: err.Error()}); err != nil {
				return
			}
			continue
		}

		if resp != nil {
			if err := c.write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "player", c.Player)
		}
	}
}
