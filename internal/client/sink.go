package client

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"

	"github.com/t3ls/fdtbridge/internal/observability"
	"github.com/t3ls/fdtbridge/internal/schema"
)

// Relay is the caller-owned channel that progress messages are forwarded
// to. The bridge only writes to it; its lifecycle belongs to the caller.
type Relay interface {
	Send(ctx context.Context, payload []byte) error
}

// RelayFunc adapts a function to the Relay interface.
type RelayFunc func(ctx context.Context, payload []byte) error

// Send forwards the payload to the wrapped function.
func (f RelayFunc) Send(ctx context.Context, payload []byte) error { return f(ctx, payload) }

// Sink handles one inbound stream message. Deliver is called once per
// message, in arrival order; the client waits for it to return before
// reading the next message.
type Sink interface {
	Deliver(ctx context.Context, c *Client, relay Relay, msg *schema.StreamMessage) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, c *Client, relay Relay, msg *schema.StreamMessage) error

// Deliver forwards the message to the wrapped function.
func (f SinkFunc) Deliver(ctx context.Context, c *Client, relay Relay, msg *schema.StreamMessage) error {
	return f(ctx, c, relay, msg)
}

// relayEnvelope wraps a forwarded message the way the container service's
// consumers expect it.
type relayEnvelope struct {
	Message json.RawMessage `json:"message"`
}

// RelaySink is the default sink: it forwards each message to the caller's
// relay wrapped in a {"message": ...} envelope. Relay failures are logged
// and do not abort the exchange; the stream keeps draining.
type RelaySink struct{}

// Deliver forwards the raw message frame to the relay.
func (RelaySink) Deliver(ctx context.Context, c *Client, relay Relay, msg *schema.StreamMessage) error {
	if relay == nil {
		return nil
	}
	payload, err := json.Marshal(relayEnvelope{Message: msg.Raw})
	if err != nil {
		c.log().Error("encode relay envelope failed", observability.Field{Key: "error", Value: err.Error()})
		return nil
	}
	if err := relay.Send(ctx, payload); err != nil {
		c.log().Error("relay send failed", observability.Field{Key: "error", Value: err.Error()})
	}
	return nil
}

// MulticastSink delivers every message to each inner sink. Inner sinks run
// concurrently per message, but Deliver returns only when all of them have
// finished, so message order is still preserved end to end.
type MulticastSink struct {
	sinks []Sink
}

// NewMulticastSink builds a sink that fans out to the given sinks.
func NewMulticastSink(sinks ...Sink) *MulticastSink {
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MulticastSink{sinks: kept}
}

// Deliver fans the message out and joins any inner sink errors.
func (m *MulticastSink) Deliver(ctx context.Context, c *Client, relay Relay, msg *schema.StreamMessage) error {
	if len(m.sinks) == 0 {
		return nil
	}
	if len(m.sinks) == 1 {
		return m.sinks[0].Deliver(ctx, c, relay, msg)
	}
	p := pool.New().WithErrors()
	for _, s := range m.sinks {
		sink := s
		p.Go(func() error {
			return sink.Deliver(ctx, c, relay, msg)
		})
	}
	return p.Wait()
}
