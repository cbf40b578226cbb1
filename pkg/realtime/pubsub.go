package realtime

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"
)

type sendFunc func(ctx context.Context, data []byte, attrs map[string]string) error

// PubSubPublisher mirrors events onto a Cloud Pub/Sub topic. The channel and
// event name travel as message attributes so subscribers can filter.
type PubSubPublisher struct {
	send sendFunc
}

func NewPubSubPublisher(p *pubsub.Publisher) (*PubSubPublisher, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return &PubSubPublisher{send: func(ctx context.Context, data []byte, attrs map[string]string) error {
		_, err := p.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs}).Get(ctx)
		return err
	}}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	evt, err := newEvent(channel, event, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.send(ctx, raw, map[string]string{"channel": channel, "event": event})
}
