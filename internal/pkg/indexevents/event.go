package indexevents

import (
	"context"
	"time"
)

type EventType string

const (
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
)

// Event describes a block whose index operations were committed.
type Event struct {
	Type       EventType `json:"type"`
	Hash       string    `json:"hash"`
	PrevHash   string    `json:"prevHash,omitempty"`
	Height     int64     `json:"height"`
	Operations int       `json:"operations"`
	Time       time.Time `json:"time"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}

var _ Publisher = NopPublisher{}
