package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"hearth-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RoomListKey is the pseudo-room carrying room metadata changes. Clients
// subscribe to it from the lobby, without joining any chat room.
const RoomListKey = "room_list"

// RoomKey is the hub subscription key for one chat room.
func RoomKey(roomID uint) string {
	return fmt.Sprintf("chat_%d", roomID)
}

type Hub struct {
	// Subscriptions map: room key -> set of clients. A client may sit in
	// several rooms at once (chat rooms plus room_list).
	rooms map[string]map[*Client]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Per-room delivery locks. Enqueueing a broadcast to a room's members
	// happens under that room's lock so every subscriber observes the same
	// event order.
	delivery   map[string]*sync.Mutex
	deliveryMu sync.Mutex

	// Redis connection for cross-instance fanout. Nil in single-instance
	// deployments.
	rdb *redis.Client

	// Identifies this instance on the relay channel so its own publishes
	// are not delivered twice.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, instanceID string, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]struct{}),
		delivery:   make(map[string]*sync.Mutex),
		rdb:        rdb,
		instanceID: instanceID,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID, "username": client.Username})

		case client := <-h.unregister:
			h.mu.Lock()
			for key, members := range h.rooms {
				if _, ok := members[client]; ok {
					delete(members, client)
					if len(members) == 0 {
						delete(h.rooms, key)
					}
				}
			}
			h.mu.Unlock()
			// Cancelling the context stops the write pump and any AI turn.
			// Send is left open so a racing Deliver cannot panic.
			client.Close()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
		}
	}
}

// Subscribe adds a client to a room's fanout set.
func (h *Hub) Subscribe(roomKey string, client *Client) {
	h.mu.Lock()
	members, ok := h.rooms[roomKey]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomKey] = members
	}
	members[client] = struct{}{}
	h.mu.Unlock()
}

// Unsubscribe removes a client from one room.
func (h *Hub) Unsubscribe(roomKey string, client *Client) {
	h.mu.Lock()
	if members, ok := h.rooms[roomKey]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomKey)
		}
	}
	h.mu.Unlock()
}

// Broadcast delivers an event to every subscriber of a room, on this
// instance and (via Redis) on the others. A subscriber whose send buffer
// is full is dropped rather than allowed to stall the room.
func (h *Hub) Broadcast(roomKey string, event Event) {
	h.deliverLocal(roomKey, event)
	h.publishToRedis(roomKey, event)
}

// BroadcastRoomList delivers a room metadata change to lobby subscribers.
func (h *Hub) BroadcastRoomList(event Event) {
	h.Broadcast(RoomListKey, event)
}

func (h *Hub) deliverLocal(roomKey string, event Event) {
	lock := h.roomLock(roomKey)
	lock.Lock()

	// Snapshot the member set so a slow enqueue never blocks a concurrent
	// subscribe or unsubscribe on the map lock.
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[roomKey]))
	for client := range h.rooms[roomKey] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	var stalled []*Client
	for _, client := range members {
		if client.ctx.Err() != nil {
			continue
		}
		select {
		case client.Send <- event:
		default:
			stalled = append(stalled, client)
		}
	}
	lock.Unlock()

	for _, client := range stalled {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID, "room": roomKey})
		h.unregister <- client
	}
}

func (h *Hub) roomLock(roomKey string) *sync.Mutex {
	h.deliveryMu.Lock()
	defer h.deliveryMu.Unlock()
	lock, ok := h.delivery[roomKey]
	if !ok {
		lock = &sync.Mutex{}
		h.delivery[roomKey] = lock
	}
	return lock
}

func (h *Hub) publishToRedis(roomKey string, event Event) {
	if h.rdb == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"origin":  h.instanceID,
		"room":    roomKey,
		"message": json.RawMessage(data),
	})
	h.rdb.Publish(context.Background(), "cluster_events", payload)
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin  string          `json:"origin"`
			Room    string          `json:"room"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Undecodable relay payload", map[string]interface{}{"error": err.Error()})
			continue
		}

		// Locally delivered already when this instance published it.
		if payload.Origin == h.instanceID {
			continue
		}

		h.deliverLocal(payload.Room, RawEvent(payload.Message))
	}
}
