// Package notify publishes page-update events over NATS JetStream, letting
// downstream consumers (search indexers, cache invalidators) react to
// timestamp changes without polling the manifest.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// PageUpdatedEvent describes a page whose resolved timestamp changed.
type PageUpdatedEvent struct {
	Path          string    `json:"path"`
	Timestamp     time.Time `json:"timestamp"`
	PrimaryAuthor string    `json:"primary_author,omitempty"`
	Authors       []string  `json:"authors,omitempty"`
	RunID         string    `json:"run_id"`
	PublishedAt   time.Time `json:"published_at"`
}

// Publisher publishes resolution events to a JetStream subject.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewPublisher connects to NATS and prepares a JetStream context.
func NewPublisher(url, subject string) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS publisher initialized",
		slog.String("url", url),
		slog.String("subject", subject))

	return &Publisher{conn: conn, js: js, subject: subject}, nil
}

// PublishPageUpdated publishes a single page-update event.
func (p *Publisher) PublishPageUpdated(ctx context.Context, event *PageUpdatedEvent) error {
	if event.PublishedAt.IsZero() {
		event.PublishedAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := p.js.Publish(pubCtx, p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published page update",
		slog.String("path", event.Path),
		slog.String("subject", p.subject))
	return nil
}

// Close drains and closes the underlying connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
