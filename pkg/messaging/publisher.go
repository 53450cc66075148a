// Package messaging defines how the inventory service announces catalog changes.
package messaging

import (
	"context"
)

// Event is a message bound to a subject.
// MessageID identifies the message for broker side deduplication; an empty ID disables it.
type Event interface {
	Subject() string
	MessageID() string
	Payload() ([]byte, error)
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}
