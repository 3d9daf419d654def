package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/redis"
)

// frame is the wire format relayed between replicas. Origin lets a replica
// skip frames it already delivered locally.
type frame struct {
	Origin uuid.UUID `json:"origin"`
	UserID uuid.UUID `json:"user_id,omitempty"`
	Room   string    `json:"room,omitempty"`
	Event  Event     `json:"event"`
}

// Bridge fans events out across replicas via redis pub/sub. Each replica
// publishes on a shared channel and replays received frames into its local hub.
type Bridge struct {
	id    uuid.UUID
	hub   *Hub
	redis *redis.Client
	logg  *logger.Logger
}

// bridgeChannel carries all cross-replica realtime traffic.
const bridgeChannel = "bk:channel:realtime"

// NewBridge wires the redis relay to a hub.
func NewBridge(hub *Hub, redisClient *redis.Client, logg *logger.Logger) (*Bridge, error) {
	if hub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "realtime hub required")
	}
	if redisClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis client required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "realtime logger required")
	}
	return &Bridge{
		id:    uuid.New(),
		hub:   hub,
		redis: redisClient,
		logg:  logg,
	}, nil
}

// PushToUser delivers locally and relays to peer replicas.
func (b *Bridge) PushToUser(ctx context.Context, userID uuid.UUID, event Event) error {
	b.hub.SendToUser(ctx, userID, event)
	return b.publish(ctx, frame{Origin: b.id, UserID: userID, Event: event})
}

// BroadcastRoom delivers to local room members and relays to peer replicas.
func (b *Bridge) BroadcastRoom(ctx context.Context, room string, event Event) error {
	b.hub.BroadcastRoom(ctx, room, event)
	return b.publish(ctx, frame{Origin: b.id, Room: room, Event: event})
}

func (b *Bridge) publish(ctx context.Context, f frame) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding realtime frame")
	}
	if err := b.redis.Publish(ctx, bridgeChannel, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publishing realtime frame")
	}
	return nil
}

// Run subscribes to the relay channel and replays peer frames into the local
// hub until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	sub, err := b.redis.Subscribe(ctx, bridgeChannel)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var f frame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				b.logg.Warn(ctx, "dropping malformed realtime frame")
				continue
			}
			if f.Origin == b.id {
				continue
			}
			b.replay(ctx, f)
		}
	}
}

func (b *Bridge) replay(ctx context.Context, f frame) {
	if f.Room != "" {
		b.hub.BroadcastRoom(ctx, f.Room, f.Event)
		return
	}
	if f.UserID != uuid.Nil {
		b.hub.SendToUser(ctx, f.UserID, f.Event)
	}
}
