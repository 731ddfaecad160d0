// Package events publishes domain events to operators over NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/nats-io/nats.go"
)

// SubjectTicketSubmitted carries TicketSubmitted payloads.
const SubjectTicketSubmitted = "tickets.submitted"

// Event is anything that can be published.
type Event interface {
	Subject() string
}

type TicketSubmitted struct {
	Ref         string    `json:"ref"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (TicketSubmitted) Subject() string { return SubjectTicketSubmitted }

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop drops every event. It is used when no NATS URL is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSPublisher sends JSON encoded events on core NATS subjects.
type NATSPublisher struct {
	nc     conn
	close  func()
	logger *slog.Logger
}

// Connect dials url and returns a publisher that owns the connection.
func Connect(url string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("arbor"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "err", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p := newPublisher(nc, logger)
	p.close = nc.Close
	return p, nil
}

func newPublisher(nc conn, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &NATSPublisher{nc: nc, logger: logger, close: func() {}}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := event.Subject()
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush subject %s: %w", subject, err)
	}
	p.logger.Debug("event published", "subject", subject, "bytes", len(data))
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() {
	p.close()
}
