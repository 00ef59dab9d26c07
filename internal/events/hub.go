package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rumahkopi/api/internal/ws"
)

// Broadcaster is satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(topic string, event ws.Event)
}

// HubPublisher pushes events to the admin topic and, for customer-scoped
// events, to the customer's personal topic.
type HubPublisher struct {
	hub Broadcaster
}

func NewHubPublisher(hub Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, e Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", e.Type, err)
	}
	msg := ws.Event{Type: e.Type, Payload: payload}
	p.hub.Broadcast(ws.TopicAdmin, msg)
	if e.UserID != nil {
		p.hub.Broadcast(ws.UserTopic(*e.UserID), msg)
	}
	return nil
}
