package email

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/cinemabooking/config"
	"github.com/Domenick1991/cinemabooking/internal/kafka"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender turns booking and order events into customer emails. Without an SMTP
// host it only logs what it would have sent.
type Sender struct {
	dialer dialer
	from   string
}

func NewSender(cfg config.SMTPConfig) *Sender {
	s := &Sender{from: cfg.From}
	if cfg.Host != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

func (s *Sender) Send(ctx context.Context, event any) error {
	to, subject, body, err := compose(event)
	if err != nil {
		return err
	}
	if to == "" {
		return nil
	}

	if s.dialer == nil {
		logger.Info("email (smtp disabled)", "to", to, "subject", subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func compose(event any) (to, subject, body string, err error) {
	switch ev := event.(type) {
	case *kafka.BookingEvent:
		subject = bookingSubjects[ev.Type]
		if subject == "" {
			subject = "Booking update"
		}
		body = fmt.Sprintf("Hi %s,\n\nBooking %s for seat %s at %s is now %s.\n",
			ev.CustomerName, ev.Token, ev.SeatNumber, ev.Showtime.Format(time.RFC1123), ev.Status)
		if ev.Status == "PENDING" {
			body += fmt.Sprintf("Please confirm before %s.\n", ev.ExpiresAt.Format(time.RFC1123))
		}
		return ev.Email, subject, body, nil
	case *kafka.OrderEvent:
		subject = fmt.Sprintf("Food order #%d: %s", ev.OrderID, ev.Status)
		body = fmt.Sprintf("Hi %s,\n\nYour order #%d (total %d.%02d) is now %s.\n",
			ev.CustomerName, ev.OrderID, ev.TotalCents/100, ev.TotalCents%100, ev.Status)
		return ev.Email, subject, body, nil
	}
	return "", "", "", fmt.Errorf("unsupported event %T", event)
}

var bookingSubjects = map[string]string{
	"booking_created":   "Your seat is on hold",
	"booking_confirmed": "Your booking is confirmed",
	"booking_cancelled": "Your booking was cancelled",
	"booking_expired":   "Your seat hold expired",
}
