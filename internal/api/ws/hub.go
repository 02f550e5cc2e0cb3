package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/safeplate/internal/server/middleware"
	redisstore "github.com/gosuda/safeplate/internal/store/redis"
)

// Subscriber delivers the payloads published on a channel until ctx is done
// or cleanup is called. *redisstore.PubSub satisfies this interface.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// subscribedMessage is sent once the channel subscription is confirmed, so
// a client knows no later event will be missed.
var subscribedMessage = []byte(`{"type":"subscribed"}`) //nolint:gochecknoglobals // constant payload

// Hub relays Redis pub/sub onboarding events to WebSocket clients.
type Hub struct {
	pubsub Subscriber
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub Subscriber) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServeOnboarding streams the caller's onboarding events.
// Subscribes to Redis channel "onboarding:<ownerID>" for the authenticated
// owner and forwards every event as a text message.
func (h *Hub) ServeOnboarding(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx := conn.CloseRead(r.Context())
	channel := redisstore.OnboardingChannel(id.UserID)

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	if err := conn.Write(ctx, websocket.MessageText, subscribedMessage); err != nil {
		log.Debug().Err(err).Msg("websocket write")
		return
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
