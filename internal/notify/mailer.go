package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/rs/zerolog"
)

// Mailer sends booking-confirmation email over SMTP. When no host is
// configured it logs the message instead, so local runs work without
// a mail server.
type Mailer struct {
	host     string
	port     string
	from     string
	password string
	log      *zerolog.Logger
}

// NewMailer constructs a Mailer. host may be empty for log-only mode.
func NewMailer(host, port, from, password string, log *zerolog.Logger) *Mailer {
	return &Mailer{host: host, port: port, from: from, password: password, log: log}
}

// SendBookingConfirmation emails the client that their slot is confirmed.
func (m *Mailer) SendBookingConfirmation(msg BookingConfirmedMessage) error {
	subject := fmt.Sprintf("Booking confirmed: %s", msg.ClassName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour booking for %s with %s on %s is confirmed.\nBooking reference: %d\n\nSee you there!",
		msg.ClientName, msg.ClassName, msg.Instructor,
		msg.StartTime.Format(time.RFC1123), msg.BookingID,
	)

	if m.host == "" {
		m.log.Info().
			Str("email", msg.ClientEmail).
			Str("subject", subject).
			Msg("smtp not configured, skipping send")
		return nil
	}

	mail := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, msg.ClientEmail, subject, body,
	)

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{msg.ClientEmail}, []byte(mail)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("email", msg.ClientEmail).Int64("booking_id", msg.BookingID).Msg("confirmation email sent")
	return nil
}
