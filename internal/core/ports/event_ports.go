package ports

import (
	"context"

	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

type EventNotifier interface {
	Notify(ctx context.Context, event domain.Event) error
}
