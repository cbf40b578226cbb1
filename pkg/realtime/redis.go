package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

type redisPubSub interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error)
	ChannelName(key string) string
}

// RedisBroker publishes and subscribes over redis pub/sub.
type RedisBroker struct {
	client redisPubSub
}

func NewRedisBroker(client redisPubSub) (*RedisBroker, error) {
	if client == nil {
		return nil, errors.New("redis client required for realtime broker")
	}
	return &RedisBroker{client: client}, nil
}

func (b *RedisBroker) Publish(ctx context.Context, channel, event string, payload any) error {
	evt, err := newEvent(channel, event, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, string(raw))
}

func (b *RedisBroker) Subscribe(ctx context.Context, channels ...string) (<-chan Event, func() error, error) {
	if len(channels) == 0 {
		return nil, nil, errors.New("at least one channel is required")
	}
	sub, err := b.client.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		pump(ctx, sub.Channel(), out, b.client.ChannelName)
	}()
	return out, sub.Close, nil
}

func pump(ctx context.Context, in <-chan *redis.Message, out chan<- Event, channelName func(string) string) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue
			}
			if evt.Channel == "" {
				evt.Channel = channelName(msg.Channel)
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}
}
