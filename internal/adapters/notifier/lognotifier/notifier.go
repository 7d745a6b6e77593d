package lognotifier

import (
	"context"

	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
)

type notifier struct {
	l *zap.Logger
}

// New returns a notifier that writes events to the log.
func New(l *zap.Logger) ports.EventNotifier {
	return &notifier{l: l}
}

func (n *notifier) Notify(_ context.Context, event domain.Event) error {
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.Time("occurred_at", event.OccurredAt),
	}
	if event.UserID != nil {
		fields = append(fields, zap.Stringer("user_id", event.UserID))
	}
	if event.PollID != nil {
		fields = append(fields, zap.Stringer("poll_id", event.PollID))
	}
	if event.OptionID != nil {
		fields = append(fields, zap.Stringer("option_id", event.OptionID))
	}
	if event.VoteID != nil {
		fields = append(fields, zap.Stringer("vote_id", event.VoteID))
	}

	n.l.Info("domain event", fields...)
	return nil
}
