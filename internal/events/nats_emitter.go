package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/sitepress/internal/logfields"
)

// NATSEmitter publishes events to a JetStream subject.
type NATSEmitter struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	logger  *slog.Logger
}

// NewNATSEmitter connects to NATS and prepares a JetStream publisher for
// the given subject.
func NewNATSEmitter(url, subject string, logger *slog.Logger) (*NATSEmitter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	logger.Info("event emitter initialized", "url", url, "subject", subject)
	return &NATSEmitter{conn: conn, js: js, subject: subject, logger: logger}, nil
}

// Emit publishes the event. Failures are logged and swallowed so the
// publish pipeline never blocks on eventing.
func (e *NATSEmitter) Emit(event *PublishEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		e.logger.Warn("marshal publish event failed", logfields.Error(err))
		return
	}

	if _, err := e.js.Publish(ctx, e.subject, data); err != nil {
		e.logger.Warn("publish event emit failed",
			slog.String("type", string(event.Type)),
			logfields.JobID(event.JobID),
			logfields.Error(err))
		return
	}

	e.logger.Debug("publish event emitted",
		slog.String("type", string(event.Type)),
		logfields.JobID(event.JobID),
		logfields.WebsiteID(event.WebsiteID))
}

// Close closes the NATS connection.
func (e *NATSEmitter) Close() error {
	if e.conn != nil {
		e.conn.Close()
	}
	return nil
}
