package controllers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shashankphatkure/equico-app/api/controllers/callercontext"
	"github.com/Shashankphatkure/equico-app/api/responses"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/Shashankphatkure/equico-app/pkg/realtime"
)

const (
	realtimeWriteWait  = 10 * time.Second
	realtimePongWait   = 60 * time.Second
	realtimePingPeriod = (realtimePongWait * 9) / 10
	realtimeReadLimit  = 512
)

// RealtimeSubscribe upgrades to a websocket and streams the caller's private
// channel plus the public posts channel until either side hangs up.
func RealtimeSubscribe(sub realtime.Subscriber, allowedOrigins []string, logg *logger.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if sub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "realtime unavailable"))
			return
		}
		userID, err := callercontext.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		events, stop, err := sub.Subscribe(ctx, realtime.UserChannel(userID), realtime.ChannelPosts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to realtime channels"))
			return
		}
		defer func() {
			if err := stop(); err != nil {
				logg.Warn(ctx, "realtime unsubscribe failed")
			}
		}()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logg.Warn(ctx, "realtime upgrade rejected")
			return
		}
		defer conn.Close()

		go drainClient(conn, cancel)
		streamEvents(ctx, conn, events, logg)
	}
}

// drainClient consumes control frames; clients are not expected to send data.
func drainClient(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(realtimeReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(realtimePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(realtimePongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func streamEvents(ctx context.Context, conn *websocket.Conn, events <-chan realtime.Event, logg *logger.Logger) {
	ticker := time.NewTicker(realtimePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(realtimeWriteWait))
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(realtimeWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				logg.Warn(logg.WithField(ctx, "channel", event.Channel), "realtime write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(realtimeWriteWait)); err != nil {
				return
			}
		}
	}
}
