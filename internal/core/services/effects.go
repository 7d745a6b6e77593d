package services

import (
	"context"
	"time"

	"github.com/vncsmyrnk/pollapp/internal/core/caching"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
)

const notifyTimeout = 2 * time.Second

// effects runs the steps that follow a committed write: cache invalidation
// first, then event publication. Neither can fail the write.
type effects struct {
	cache  *caching.Layer
	events ports.EventNotifier
	l      *zap.Logger
}

func (e effects) committed(ctx context.Context, keys []string, events ...domain.Event) {
	e.cache.Invalidate(ctx, keys...)

	if e.events == nil {
		return
	}
	for _, event := range events {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		if err := e.events.Notify(notifyCtx, event); err != nil {
			e.l.Warn("failed to publish event", zap.String("type", string(event.Type)), zap.Error(err))
		}
		cancel()
	}
}
