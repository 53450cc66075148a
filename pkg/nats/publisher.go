package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var _ messaging.Publisher = (*NatsPublisher)(nil)

// NatsPublisher publishes events to a single JetStream stream.
type NatsPublisher struct {
	js     jetstream.JetStream
	stream string
}

func NewNatsPublisher(js jetstream.JetStream, stream string) *NatsPublisher {
	return &NatsPublisher{js: js, stream: stream}
}

// Publish sends the event and waits for the stream acknowledgement.
// The trace context of ctx travels in the message headers.
func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}

	msg := nats.NewMsg(event.Subject())
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	opts := []jetstream.PublishOpt{jetstream.WithExpectStream(p.stream)}
	if id := event.MessageID(); id != "" {
		opts = append(opts, jetstream.WithMsgID(id))
	}
	if _, err = p.js.PublishMsg(ctx, msg, opts...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}
