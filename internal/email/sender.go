package email

import (
	"context"
	"errors"

	"github.com/skumawat/bidkart-backend/pkg/logger"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message through an external provider. Delivery failures
// are the caller's to retry; the interface stays provider-agnostic.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes outbound mail to the structured log instead of a provider.
// It backs local development and the test suite.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds a sender that only logs.
func NewLogSender(logg *logger.Logger) (*LogSender, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &LogSender{logg: logg}, nil
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	s.logg.Info(logCtx, "email delivered to log sink")
	return nil
}
