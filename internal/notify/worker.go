package notify

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Worker consumes booking-confirmed events and sends confirmation
// email for each one.
type Worker struct {
	client *Client
	mailer *Mailer
	log    *zerolog.Logger
	done   chan struct{}
	cancel context.CancelFunc
}

// NewWorker constructs a Worker.
func NewWorker(client *Client, mailer *Mailer, log *zerolog.Logger) *Worker {
	return &Worker{
		client: client,
		mailer: mailer,
		log:    log,
		done:   make(chan struct{}),
	}
}

// Start begins consuming in the background until ctx is cancelled or
// Stop is called.
func (w *Worker) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go func() {
		defer close(w.done)

		handler := func(body []byte) error {
			var msg BookingConfirmedMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				w.log.Error().Err(err).Str("body", string(body)).Msg("failed to unmarshal message")
				return err
			}

			w.log.Info().
				Int64("booking_id", msg.BookingID).
				Int64("class_id", msg.ClassID).
				Msg("processing booking confirmation")

			if err := w.mailer.SendBookingConfirmation(msg); err != nil {
				w.log.Warn().Err(err).Int64("booking_id", msg.BookingID).Msg("failed to send confirmation email")
			}
			// Email failure is not requeued: the booking is already
			// durable and a stuck message would retry forever.
			return nil
		}

		if err := w.client.Consume(handler); err != nil {
			w.log.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		w.log.Info().Msg("notification worker stopped")
	}()
}

// Stop cancels consumption and waits for the worker goroutine to exit.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}
