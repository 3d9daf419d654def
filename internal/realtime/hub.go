package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
)

// Event is a single outbound realtime frame. Name matches the legacy socket
// event names clients already handle ("message", "notification").
type Event struct {
	Name string `json:"event"`
	Room string `json:"room,omitempty"`
	Data any    `json:"data"`
}

const (
	EventMessage      = "message"
	EventNotification = "notification"
)

// Subscriber is one live client connection. Events are delivered on C; slow
// consumers are dropped rather than blocking the hub.
type Subscriber struct {
	ID     uuid.UUID
	UserID uuid.UUID
	C      chan Event
}

// Hub is the process-local connection registry. It is a delivery
// optimization only: all state here is rebuildable from nothing, so replicas
// never coordinate through it.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[uuid.UUID]*Subscriber
	rooms       map[string]map[uuid.UUID]struct{}
	sendBuffer  int
	logg        *logger.Logger
}

// NewHub builds an empty hub.
func NewHub(sendBuffer int, logg *logger.Logger) (*Hub, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "realtime logger required")
	}
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Hub{
		subscribers: make(map[uuid.UUID]map[uuid.UUID]*Subscriber),
		rooms:       make(map[string]map[uuid.UUID]struct{}),
		sendBuffer:  sendBuffer,
		logg:        logg,
	}, nil
}

// Subscribe registers a new connection for the authenticated user.
func (h *Hub) Subscribe(userID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		ID:     uuid.New(),
		UserID: userID,
		C:      make(chan Event, h.sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[uuid.UUID]*Subscriber)
	}
	h.subscribers[userID][sub.ID] = sub
	return sub
}

// Unsubscribe drops the connection and closes its channel. When the user's
// last connection goes away their room memberships are swept too.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.subscribers[sub.UserID]
	if conns == nil {
		return
	}
	if _, ok := conns[sub.ID]; !ok {
		return
	}
	delete(conns, sub.ID)
	if len(conns) == 0 {
		delete(h.subscribers, sub.UserID)
		for room, members := range h.rooms {
			delete(members, sub.UserID)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(sub.C)
}

// JoinRoom adds the user to a chat room.
func (h *Hub) JoinRoom(room string, userID uuid.UUID) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[uuid.UUID]struct{})
	}
	h.rooms[room][userID] = struct{}{}
}

// LeaveRoom removes the user from a chat room.
func (h *Hub) LeaveRoom(room string, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// InRoom reports whether the user currently has the room joined.
func (h *Hub) InRoom(room string, userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][userID]
	return ok
}

// SendToUser delivers the event to every live connection of one user.
func (h *Hub) SendToUser(ctx context.Context, userID uuid.UUID, event Event) {
	h.mu.RLock()
	conns := make([]*Subscriber, 0, len(h.subscribers[userID]))
	for _, sub := range h.subscribers[userID] {
		conns = append(conns, sub)
	}
	h.mu.RUnlock()

	for _, sub := range conns {
		h.deliver(ctx, sub, event)
	}
}

// BroadcastRoom delivers the event to every room member, the sender's own
// connections included so their clients see the message echoed back.
func (h *Hub) BroadcastRoom(ctx context.Context, room string, event Event) {
	h.mu.RLock()
	members := make([]uuid.UUID, 0, len(h.rooms[room]))
	for userID := range h.rooms[room] {
		members = append(members, userID)
	}
	h.mu.RUnlock()

	event.Room = room
	for _, userID := range members {
		h.SendToUser(ctx, userID, event)
	}
}

func (h *Hub) deliver(ctx context.Context, sub *Subscriber, event Event) {
	select {
	case sub.C <- event:
	default:
		logCtx := h.logg.WithUserID(ctx, sub.UserID.String())
		h.logg.Warn(logCtx, "realtime subscriber buffer full, dropping event")
	}
}
