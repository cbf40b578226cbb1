// Package realtime fans out user-facing events to connected clients.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	ChannelPosts = "posts"

	EventNewMessage      = "new-message"
	EventNewPost         = "new-post"
	EventNewNotification = "new-notification"

	userChannelPrefix = "private-user-"
)

// UserChannel is the private channel a single user listens on.
func UserChannel(userID uuid.UUID) string {
	return userChannelPrefix + userID.String()
}

// Event is the envelope delivered to subscribers.
type Event struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func newEvent(channel, event string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return Event{Channel: channel, Event: event, Payload: raw}, nil
}

// Publisher sends an event on a channel. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// Subscriber streams events from channels until ctx is done or stop is called.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (events <-chan Event, stop func() error, err error)
}

// Fanout publishes to every wrapped publisher and combines their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, channel, event string, payload any) error {
	var errs error
	for _, p := range f {
		if p == nil {
			continue
		}
		errs = multierr.Append(errs, p.Publish(ctx, channel, event, payload))
	}
	return errs
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
