// Package notify publishes booking-confirmed events to RabbitMQ and
// runs the consumer worker that sends confirmation email. Notification
// is best-effort: a failure here never affects a committed booking.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
)

// BookingConfirmedMessage is the event published after a successful
// admission commit. It carries everything the mailer needs so the
// worker does not have to read the store.
type BookingConfirmedMessage struct {
	BookingID   int64     `json:"booking_id"`
	ClassID     int64     `json:"class_id"`
	ClassName   string    `json:"class_name"`
	Instructor  string    `json:"instructor"`
	StartTime   time.Time `json:"start_time"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
}

// MessageFromBooking builds the event payload from a committed booking.
func MessageFromBooking(bwc *model.BookingWithClass) BookingConfirmedMessage {
	return BookingConfirmedMessage{
		BookingID:   bwc.ID,
		ClassID:     bwc.ClassID,
		ClassName:   bwc.FitnessClass.Name,
		Instructor:  bwc.FitnessClass.Instructor,
		StartTime:   bwc.FitnessClass.StartTime,
		ClientName:  bwc.ClientName,
		ClientEmail: bwc.ClientEmail,
	}
}

// Client wraps an AMQP connection with the exchange/queue topology for
// booking confirmations.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	log      *zerolog.Logger
}

// NewClient connects to RabbitMQ and declares a durable direct
// exchange bound to the confirmation queue.
func NewClient(url, exchange, queue string, log *zerolog.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	log.Info().Str("exchange", exchange).Str("queue", queue).Msg("rabbitmq initialized")

	return &Client{conn: conn, channel: ch, exchange: exchange, queue: queue, log: log}, nil
}

// Close shuts down the channel and connection.
func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.log.Info().Msg("rabbitmq connection closed")
}

// BookingConfirmed publishes the event as JSON with a unique message id.
func (c *Client) BookingConfirmed(ctx context.Context, msg BookingConfirmedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal booking confirmed message: %w", err)
	}

	err = c.channel.PublishWithContext(ctx, c.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   uuid.New().String(),
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish booking confirmed message: %w", err)
	}
	return nil
}

// Consume delivers queued message bodies to handler. Messages are
// acked on success and requeued on handler error.
func (c *Client) Consume(handler func([]byte) error) error {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				c.log.Warn().Err(err).Msg("failed to process message")
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}()

	c.log.Info().Str("queue", c.queue).Msg("started consuming")
	return nil
}
