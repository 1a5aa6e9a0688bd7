package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

type mockRedisPublisher struct {
	channel string
	payload []byte
	err     error
}

func (m *mockRedisPublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	m.channel = channel
	m.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

type recordingSink struct {
	mu       sync.Mutex
	profiles []domain.PersonalityProfile
}

func (s *recordingSink) OnProfileUpdated(p domain.PersonalityProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, p)
}

func newTestRelay(pub redisPublisher, hub *Hub, sinks ...ProfileSink) *RedisRelay {
	return &RedisRelay{
		publisher:  pub,
		channel:    "profiles:updated",
		instanceID: "me",
		hub:        hub,
		sinks:      sinks,
		logger:     zap.NewNop(),
		timeout:    time.Second,
	}
}

func TestRedisRelay_PublishFansOutLocallyAndToRedis(t *testing.T) {
	hub := NewHub(zap.NewNop(), 4)
	sub := hub.Subscribe()
	mock := &mockRedisPublisher{}
	relay := newTestRelay(mock, hub)

	relay.Publish(eventFor("p1"))

	if got := receiveN(t, sub, 1); got[0] != "p1" {
		t.Fatalf("expected local delivery, got %v", got)
	}
	if mock.channel != "profiles:updated" {
		t.Fatalf("unexpected channel %q", mock.channel)
	}
	var env relayEnvelope
	if err := json.Unmarshal(mock.payload, &env); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if env.Origin != "me" || env.Event.Profile.ID != "p1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestRedisRelay_PublishSurvivesRedisErrors(t *testing.T) {
	hub := NewHub(zap.NewNop(), 4)
	sub := hub.Subscribe()
	relay := newTestRelay(&mockRedisPublisher{err: errors.New("redis down")}, hub)

	relay.Publish(eventFor("p1"))
	if got := receiveN(t, sub, 1); got[0] != "p1" {
		t.Fatalf("expected local delivery despite redis error, got %v", got)
	}
}

func TestRedisRelay_HandlePayload(t *testing.T) {
	hub := NewHub(zap.NewNop(), 4)
	sub := hub.Subscribe()
	sink := &recordingSink{}
	relay := newTestRelay(&mockRedisPublisher{}, hub, sink)

	own, _ := json.Marshal(relayEnvelope{Origin: "me", Event: eventFor("mine")})
	foreign, _ := json.Marshal(relayEnvelope{Origin: "other", Event: eventFor("theirs")})

	relay.handlePayload(string(own))
	relay.handlePayload("not json")
	relay.handlePayload(string(foreign))

	if got := receiveN(t, sub, 1); got[0] != "theirs" {
		t.Fatalf("expected only foreign event, got %v", got)
	}
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
	if len(sink.profiles) != 1 || sink.profiles[0].ID != "theirs" {
		t.Fatalf("expected sink to receive foreign profile, got %+v", sink.profiles)
	}
}
