package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

// ProfileSink recibe los perfiles que llegan desde otras instancias.
type ProfileSink interface {
	OnProfileUpdated(profile domain.PersonalityProfile)
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type relayEnvelope struct {
	Origin string                `json:"origin"`
	Event  domain.ProfileUpdated `json:"event"`
}

// RedisRelay replica los eventos entre instancias de la API via Redis pub/sub.
// Publish entrega primero al hub local y despues reenvia a Redis.
type RedisRelay struct {
	client     *redis.Client
	publisher  redisPublisher
	channel    string
	instanceID string
	hub        *Hub
	sinks      []ProfileSink
	logger     *zap.Logger
	timeout    time.Duration
}

func NewRedisRelay(client *redis.Client, channel string, hub *Hub, logger *zap.Logger, sinks ...ProfileSink) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "profiles:updated"
	}
	return &RedisRelay{
		client:     client,
		publisher:  client,
		channel:    channel,
		instanceID: uuid.NewString(),
		hub:        hub,
		sinks:      sinks,
		logger:     logger,
		timeout:    2 * time.Second,
	}
}

func (r *RedisRelay) InstanceID() string {
	return r.instanceID
}

// Publish es best-effort: un fallo de Redis solo se registra, el hub local ya recibio el evento.
func (r *RedisRelay) Publish(event domain.ProfileUpdated) {
	r.hub.Publish(event)

	payload, err := json.Marshal(relayEnvelope{Origin: r.instanceID, Event: event})
	if err != nil {
		r.logger.Warn("relay marshal failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.publisher.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn("relay publish failed",
			zap.String("channel", r.channel),
			zap.Error(err),
		)
	}
}

// Run escucha el canal hasta que ctx se cancele.
func (r *RedisRelay) Run(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("relay: redis client not configured")
	}
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = pubsub.Close()
	}()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("relay subscribe %s: %w", r.channel, err)
	}
	r.logger.Info("relay subscribed", zap.String("channel", r.channel), zap.String("instance", r.instanceID))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handlePayload(msg.Payload)
		}
	}
}

func (r *RedisRelay) handlePayload(payload string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.logger.Warn("relay payload not decodable", zap.Error(err))
		return
	}
	if env.Origin == r.instanceID {
		return
	}
	for _, sink := range r.sinks {
		sink.OnProfileUpdated(env.Event.Profile)
	}
	r.hub.Publish(env.Event)
}
