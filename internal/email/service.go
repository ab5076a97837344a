package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/medrec/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, to string, name string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// New returns an SMTP mailer, or a no-op one when no SMTP host is configured.
func New(cfg config.SMTPConfig) Service {
	if cfg.Host == "" {
		return NoopService{}
	}
	return NewSMTPService(cfg)
}

type SMTPService struct {
	from    string
	send    func(...*gomail.Message) error
	breaker *gobreaker.CircuitBreaker
}

func NewSMTPService(cfg config.SMTPConfig) *SMTPService {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return newSMTPService(cfg.From, dialer.DialAndSend)
}

func newSMTPService(from string, send func(...*gomail.Message) error) *SMTPService {
	return &SMTPService{
		from: from,
		send: send,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "smtp",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

func (s *SMTPService) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour medical records account is ready. "+
		"You can now book appointments and review your records online.\n", name)
	return s.SendCustom(ctx, to, "Welcome to MedRec", body)
}

func (s *SMTPService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", content)

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.send(msg)
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoopService drops mail; used in development and tests.
type NoopService struct{}

func (NoopService) SendWelcome(_ context.Context, to string, _ string) error {
	log.Debug().Str("to", to).Msg("smtp disabled, welcome email skipped")
	return nil
}

func (NoopService) SendCustom(_ context.Context, to string, subject string, _ string) error {
	log.Debug().Str("to", to).Str("subject", subject).Msg("smtp disabled, email skipped")
	return nil
}
