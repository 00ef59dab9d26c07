package events

import (
	"context"

	"github.com/rumahkopi/api/internal/logger"
	"go.uber.org/zap"
)

// Logged wraps a publisher so failures are logged and never returned.
// Mutations have already committed when events are published.
type Logged struct {
	next Publisher
	log  *logger.Logger
}

func NewLogged(next Publisher, log *logger.Logger) *Logged {
	return &Logged{next: next, log: log.WithComponent("events")}
}

func (l *Logged) Publish(ctx context.Context, e Event) error {
	if err := l.next.Publish(ctx, e); err != nil {
		l.log.Warn("publish event failed", zap.String("type", e.Type), zap.Error(err))
	}
	return nil
}
