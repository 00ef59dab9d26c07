// Package events publishes domain changes to live dashboards and to the
// message broker.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	OrderCreated             = "order.created"
	OrderStatusChanged       = "order.status_changed"
	ReservationCreated       = "reservation.created"
	ReservationStatusChanged = "reservation.status_changed"
	UserBlockToggled         = "user.block_toggled"
	MenuAvailabilityChanged  = "menu.availability_changed"
	PackageStatusChanged     = "package.status_changed"
	PackageDeleted           = "package.deleted"
	ReviewCreated            = "review.created"
)

// Event is a change notification. UserID names the customer the change
// concerns, if any; that customer's own connections receive it too.
type Event struct {
	Type       string     `json:"type"`
	Payload    any        `json:"payload"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// New stamps an event with the current time.
func New(typ string, payload any, userID *uuid.UUID) Event {
	return Event{Type: typ, Payload: payload, UserID: userID, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
