// Package client drives streaming dataset pulls against the container
// service.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/t3ls/fdtbridge/config"
	"github.com/t3ls/fdtbridge/errs"
	"github.com/t3ls/fdtbridge/internal/download"
	"github.com/t3ls/fdtbridge/internal/observability"
	"github.com/t3ls/fdtbridge/internal/schema"
	"github.com/t3ls/fdtbridge/internal/table"
)

// Client performs streaming dataset pulls. All configuration is fixed at
// construction, so concurrent pulls on one Client are independent; message
// order is guaranteed within a single call only.
type Client struct {
	settings config.Settings
	resolver *download.Resolver
	sink     Sink
	logger   observability.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDefaultSink sets the sink used when a call passes none.
func WithDefaultSink(sink Sink) Option {
	return func(c *Client) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithLogger routes client logging to the given logger instead of the
// process-wide one.
func WithLogger(logger observability.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New constructs a Client for the configured container service.
func New(cfg config.Settings, opts ...Option) *Client {
	c := &Client{
		settings: cfg,
		resolver: download.NewResolver(cfg),
		sink:     RelaySink{},
		logger:   nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Settings returns the immutable configuration the client was built with.
func (c *Client) Settings() config.Settings { return c.settings }

func (c *Client) log() observability.Logger {
	if c.logger != nil {
		return c.logger
	}
	return observability.Log()
}

// Get pulls the named datasets in bulk mode. Every inbound message,
// including the terminal one, is handed to the sink in arrival order; the
// call returns once the terminal message has been delivered. A sink error
// aborts the exchange and is returned as-is.
func (c *Client) Get(ctx context.Context, relay Relay, names []string, sink Sink) error {
	const op = "client.get"
	if len(names) == 0 {
		return errs.New(op, errs.CodeConfig, errs.WithMessage("no dataset names requested"))
	}
	if sink == nil {
		sink = c.sink
	}

	exchange := uuid.NewString()
	conn, err := c.dial(ctx, op, exchange)
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	if err := c.sendRequest(ctx, conn, schema.NewRequest(names), op, exchange, names); err != nil {
		return err
	}

	for {
		msg, err := c.readMessage(ctx, conn, op, names)
		if err != nil {
			return err
		}
		if err := sink.Deliver(ctx, c, relay, msg); err != nil {
			return err
		}
		observability.Telemetry().IncCounter(observability.MetricMessagesRelayed, 1, map[string]string{"type": string(msg.Type)})
		if msg.Terminal() {
			_ = conn.Close(websocket.StatusNormalClosure, "final received")
			observability.Telemetry().IncCounter(observability.MetricExchangesComplete, 1, map[string]string{"mode": "bulk"})
			c.log().Info("exchange complete",
				observability.Field{Key: "exchange", Value: exchange},
				observability.Field{Key: "mode", Value: "bulk"})
			return nil
		}
	}
}

// GetSingle pulls one dataset for the [from, to) window. Progress messages
// go to the sink; the terminal message instead hands its content pointer
// to the download resolver. The returned flag is false when the download
// failed; err is non-nil only for configuration and protocol faults.
//
// useCompressed is accepted for interface parity with the service but has
// no effect yet; the compressed transport is reserved.
func (c *Client) GetSingle(
	ctx context.Context,
	relay Relay,
	name string,
	from, to time.Time,
	sink Sink,
	overrides map[string]table.Type,
	useCompressed bool,
) (*table.Table, bool, error) {
	const op = "client.get_single"
	_ = useCompressed
	if name == "" {
		return table.Failure(), false, errs.New(op, errs.CodeConfig, errs.WithMessage("no dataset name requested"))
	}
	if sink == nil {
		sink = c.sink
	}
	names := []string{name}

	exchange := uuid.NewString()
	conn, err := c.dial(ctx, op, exchange)
	if err != nil {
		return table.Failure(), false, err
	}
	defer conn.CloseNow()

	if err := c.sendRequest(ctx, conn, schema.NewSliceRequest(name, from, to), op, exchange, names); err != nil {
		return table.Failure(), false, err
	}

	for {
		msg, err := c.readMessage(ctx, conn, op, names)
		if err != nil {
			return table.Failure(), false, err
		}
		if msg.Terminal() {
			if msg.ContentPointer == "" {
				return table.Failure(), false, errs.New(op, errs.CodeProtocol,
					errs.WithMessage("terminal message carries no content pointer"),
					errs.WithDatasets(name))
			}
			_ = conn.Close(websocket.StatusNormalClosure, "final received")
			tbl, ok := c.resolver.Fetch(ctx, msg.ContentPointer, overrides)
			observability.Telemetry().IncCounter(observability.MetricExchangesComplete, 1, map[string]string{"mode": "slice"})
			c.log().Info("exchange complete",
				observability.Field{Key: "exchange", Value: exchange},
				observability.Field{Key: "mode", Value: "slice"},
				observability.Field{Key: "downloaded", Value: ok})
			return tbl, ok, nil
		}
		if err := sink.Deliver(ctx, c, relay, msg); err != nil {
			return table.Failure(), false, err
		}
		observability.Telemetry().IncCounter(observability.MetricMessagesRelayed, 1, map[string]string{"type": string(msg.Type)})
	}
}

func (c *Client) dial(ctx context.Context, op, exchange string) (*websocket.Conn, error) {
	dialCtx := ctx
	if c.settings.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.settings.HandshakeTimeout)
		defer cancel()
	}
	url := c.settings.StreamURL()
	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return nil, errs.New(op, errs.CodeNetwork,
			errs.WithMessage("dial stream endpoint"),
			errs.WithCause(err))
	}
	// Dataset payload frames have no bounded size.
	conn.SetReadLimit(-1)
	c.log().Debug("connected to stream",
		observability.Field{Key: "exchange", Value: exchange},
		observability.Field{Key: "url", Value: url})
	return conn, nil
}

func (c *Client) sendRequest(ctx context.Context, conn *websocket.Conn, req schema.DatasetRequest, op, exchange string, names []string) error {
	data, err := req.Encode()
	if err != nil {
		return errs.New(op, errs.CodeDecode, errs.WithCause(err), errs.WithDatasets(names...))
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return errs.New(op, errs.CodeNetwork,
			errs.WithMessage("send dataset request"),
			errs.WithCause(err),
			errs.WithDatasets(names...))
	}
	c.log().Debug("sent dataset request",
		observability.Field{Key: "exchange", Value: exchange},
		observability.Field{Key: "request", Value: string(data)})
	return nil
}

// readMessage blocks until the next text frame arrives and decodes it.
// A remote close before the terminal message is a protocol violation, not
// a silent end of stream.
func (c *Client) readMessage(ctx context.Context, conn *websocket.Conn, op string, names []string) (*schema.StreamMessage, error) {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, errs.New(op, errs.CodeNetwork,
					errs.WithMessage("pull cancelled"),
					errs.WithCause(err),
					errs.WithDatasets(names...))
			}
			if websocket.CloseStatus(err) != -1 {
				return nil, errs.New(op, errs.CodeProtocol,
					errs.WithMessage("stream closed before terminal message"),
					errs.WithCause(err),
					errs.WithDatasets(names...))
			}
			return nil, errs.New(op, errs.CodeNetwork,
				errs.WithMessage("read stream message"),
				errs.WithCause(err),
				errs.WithDatasets(names...))
		}
		if msgType != websocket.MessageText {
			continue
		}
		msg, err := schema.DecodeMessage(data)
		if err != nil {
			return nil, errs.New(op, errs.CodeProtocol,
				errs.WithMessage("malformed stream message"),
				errs.WithCause(err),
				errs.WithDatasets(names...))
		}
		return msg, nil
	}
}
