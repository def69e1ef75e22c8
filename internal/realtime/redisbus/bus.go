// Package redisbus relays room events between server instances over Redis
// pub/sub so clients connected to any instance see every event.
package redisbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/realtime"
)

const channelPrefix = "connections:room:"

func channel(code model.RoomCode) string {
	return channelPrefix + string(code)
}

// Bus publishes room events to Redis and delivers events received from Redis
// to the local hubs
type Bus struct {
	client    *redis.Client
	local     realtime.Publisher
	logger    *slog.Logger
	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a new Bus
func New(client *redis.Client, local realtime.Publisher, logger *slog.Logger) *Bus {
	return &Bus{
		client: client,
		local:  local,
		logger: logger.With(slog.String("component", "redisbus")),
		ready:  make(chan struct{}),
	}
}

// Publish sends the message to every instance subscribed to the room
func (b *Bus) Publish(ctx context.Context, roomCode model.RoomCode, message realtime.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, channel(roomCode), data).Err(); err != nil {
		return model.Upstream("publish event", err)
	}
	return nil
}

// Ready is closed once the subscription is active
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// Run subscribes to all room channels and relays messages locally until ctx
// is cancelled
func (b *Bus) Run(ctx context.Context) error {
	sub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return model.Upstream("subscribe events", err)
	}
	b.readyOnce.Do(func() { close(b.ready) })
	b.logger.Info("subscribed to room events")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(ctx, msg)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, msg *redis.Message) {
	code := model.RoomCode(strings.TrimPrefix(msg.Channel, channelPrefix))
	var message realtime.Message
	if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
		b.logger.Warn("dropping malformed event",
			slog.String("channel", msg.Channel),
			slog.Any("error", err))
		return
	}
	if err := b.local.Publish(ctx, code, message); err != nil {
		b.logger.Error("local delivery failed",
			slog.String("room_code", string(code)),
			slog.Any("error", err))
	}
}
