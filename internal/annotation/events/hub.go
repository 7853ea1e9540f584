package events

import (
	"context"
	"encoding/json"
	"sync"

	"pinboard/internal/common/logger"
	"pinboard/internal/observability/metrics"
	userdomain "pinboard/internal/user/domain"
)

type envelope struct {
	userID    userdomain.ID
	eventType EventType
	payload   []byte
}

// Hub fans annotation events out to the owning user's live connection.
// One connection per user; a new connection replaces the old one. All sends
// on and closes of client channels happen on the Run goroutine, so a
// publish can never race an unregister.
type Hub struct {
	clients    sync.Map
	register   chan *Client
	unregister chan *Client
	publish    chan envelope
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan envelope, 256),
		log:        log,
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			if existing, ok := h.clients.Load(client.userID); ok {
				existingClient := existing.(*Client)
				close(existingClient.send)
				h.clients.Delete(client.userID)
				metrics.EventClientsActive.Dec()
			}
			h.clients.Store(client.userID, client)
			metrics.EventClientsActive.Inc()
			h.log.WithFields(nil, logger.Fields{
				"user_id":  string(client.userID),
				"username": client.username,
				"action":   "events_register",
			}).Info("event feed client registered")

		case client := <-h.unregister:
			if existing, ok := h.clients.Load(client.userID); ok && existing.(*Client) == client {
				h.clients.Delete(client.userID)
				close(client.send)
				metrics.EventClientsActive.Dec()
				h.log.WithFields(nil, logger.Fields{
					"user_id":  string(client.userID),
					"username": client.username,
					"action":   "events_unregister",
				}).Info("event feed client unregistered")
			}

		case env := <-h.publish:
			h.deliver(env)
		}
	}
}

// Publish hands the event to the Run goroutine for delivery, dropping it
// when the hub cannot keep up or has stopped. The feed is advisory; the
// document is the source of truth.
func (h *Hub) Publish(userID userdomain.ID, event Event) {
	payload, err := json.Marshal(&event)
	if err != nil {
		h.log.Errorf("events failed to marshal %s event: %v", event.Type, err)
		return
	}

	select {
	case h.publish <- envelope{userID: userID, eventType: event.Type, payload: payload}:
	default:
		h.log.Warnf("events dropped %s event for user_id=%s: publish queue full", event.Type, userID)
	}
}

func (h *Hub) deliver(env envelope) {
	v, ok := h.clients.Load(env.userID)
	if !ok {
		return
	}

	client := v.(*Client)
	select {
	case client.send <- env.payload:
		metrics.EventsPublished.WithLabelValues(string(env.eventType)).Inc()
	default:
		h.log.Warnf("events dropped %s event for user_id=%s: send buffer full", env.eventType, env.userID)
	}
}

func (h *Hub) shutdown() {
	h.clients.Range(func(key, value interface{}) bool {
		client := value.(*Client)
		h.clients.Delete(key)
		close(client.send)
		metrics.EventClientsActive.Dec()
		return true
	})
}
