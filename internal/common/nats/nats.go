package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"paygateway/internal/common/events"
)

// SubjectPrefix prefixes every event subject.
const SubjectPrefix = "events."

// Config holds NATS configuration. An empty URL disables publishing.
type Config struct {
	URL           string        `envconfig:"NATS_URL"`
	Name          string        `envconfig:"NATS_CLIENT_NAME" default:"publicapi"`
	Stream        string        `envconfig:"NATS_STREAM" default:"PUBLICAPI_EVENTS"`
	StreamMaxAge  time.Duration `envconfig:"NATS_STREAM_MAX_AGE" default:"168h"`
	MaxReconnects int           `envconfig:"NATS_MAX_RECONNECTS" default:"10"`
	ReconnectWait time.Duration `envconfig:"NATS_RECONNECT_WAIT" default:"2s"`
}

// Enabled reports whether a NATS server is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// Client wraps NATS connection with JetStream support
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// New creates a new NATS client
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(c *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	logger.Info("NATS connection established", "url", conn.ConnectedUrl())

	return &Client{conn: conn, js: js, logger: logger}, nil
}

// Close drains and closes the NATS connection
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}

// EnsureStream creates or updates the stream that captures every event
// subject.
func (c *Client) EnsureStream(ctx context.Context, cfg Config) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{SubjectPrefix + ">"},
		MaxAge:    cfg.StreamMaxAge,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("creating/updating stream %s: %w", cfg.Stream, err)
	}

	c.logger.Info("stream ensured", "name", cfg.Stream)
	return nil
}

// HealthCheck checks NATS connection health
func (c *Client) HealthCheck() error {
	if !c.conn.IsConnected() {
		return fmt.Errorf("NATS not connected")
	}
	return nil
}

// StreamPublisher is the JetStream publish call. jetstream.JetStream
// implements it.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes events to JetStream
type Publisher struct {
	js     StreamPublisher
	logger *slog.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(js StreamPublisher, logger *slog.Logger) *Publisher {
	return &Publisher{js: js, logger: logger}
}

// Publisher returns a Publisher on c's JetStream context.
func (c *Client) Publisher() *Publisher {
	return NewPublisher(c.js, c.logger)
}

// Publish publishes an event to events.<type>. The event id is used as the
// JetStream message id so retried publishes are deduplicated.
func (p *Publisher) Publish(ctx context.Context, event *events.Event) error {
	subject := SubjectPrefix + event.Type

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	p.logger.Debug("event published",
		"event_id", event.ID,
		"type", event.Type,
		"subject", subject,
	)

	return nil
}
