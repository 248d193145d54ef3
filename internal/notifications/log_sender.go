package notifications

import (
	"context"

	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

// LogSender writes notifications to the log instead of delivering them.
// It is used when no Pub/Sub project is configured.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logg *logger.Logger) *LogSender {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, n Notification) error {
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"kind":         n.Kind.String(),
		"to":           n.To,
		"session_id":   n.SessionID,
		"amount_cents": n.AmountCents,
	}), "notification (log sender)")
	return nil
}
