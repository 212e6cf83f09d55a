// Package events publishes analytics/domain events to RabbitMQ. Delivery is
// best-effort: every failure is logged and returned, and callers ignore the
// error when the event is secondary to the action that produced it.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueModerationDecided = "listing.moderation.decided"
	QueuePaymentCompleted  = "payment.completed"
	QueueListingPublished  = "listing.published"
)

type ModerationDecidedEvent struct {
	ListingID  uint      `json:"listing_id"`
	AdminID    uint      `json:"admin_id"`
	Decision   string    `json:"decision"` // ACTIVE or REJECTED
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PaymentCompletedEvent struct {
	TransactionID uint      `json:"transaction_id"`
	UserID        uint      `json:"user_id"`
	AmountCents   int64     `json:"amount_cents"`
	Reference     string    `json:"reference"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ListingPublishedEvent struct {
	ListingID  uint      `json:"listing_id"`
	UserID     uint      `json:"user_id"`
	Plan       string    `json:"plan"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher dials per publish. Event volume here is low (moderation decisions,
// completed payments), so connection reuse is not worth the reconnect
// bookkeeping.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish sends one JSON event to the named durable queue.
func (p *Publisher) Publish(ctx context.Context, queue string, event interface{}) error {
	if p == nil || p.url == "" {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("[EVENTS] dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("[EVENTS] channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("[EVENTS] queue declare %s: %v", queue, err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("[EVENTS] marshal event: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Printf("[EVENTS] publish %s: %v", queue, err)
		return err
	}
	return nil
}
