// Package eventbus is a thin pub/sub wrapper over Redis. It carries
// best-effort notifications only; nothing durable ever depends on a
// subscriber having been listening at publish time.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one delivered pub/sub payload, decoded from its channel.
type Message struct {
	Channel string
	Payload string
}

// AnalysisCompletedEvent is the payload published on a user's channel when
// a game finishes analysis, and the payload an SSE client receives.
type AnalysisCompletedEvent struct {
	Type      string    `json:"type"`
	UserID    int64     `json:"user_id"`
	GameID    int64     `json:"game_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Bus publishes and subscribes to named channels over a Redis connection.
type Bus struct {
	client *redis.Client
}

func New(client *redis.Client) *Bus {
	return &Bus{client: client}
}

// AnalysisChannel returns the channel name a user's completion events are
// published on: "analysis_completed:user:<user_id>".
func AnalysisChannel(userID int64) string {
	return fmt.Sprintf("analysis_completed:user:%d", userID)
}

// Publish sends payload on channel and returns the number of live
// subscribers, purely informational. Callers should log a returned error
// but must not fail the owning task over it.
func (b *Bus) Publish(ctx context.Context, channel string, payload interface{}) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("eventbus: failed to marshal payload for %s: %v", channel, err)
	}
	n, err := b.client.Publish(ctx, channel, data).Result()
	if err != nil {
		return 0, fmt.Errorf("eventbus: failed to publish to %s: %v", channel, err)
	}
	return int(n), nil
}

// PublishAnalysisCompleted builds and publishes the completion event for
// one analyzed game on the owning user's channel.
func (b *Bus) PublishAnalysisCompleted(ctx context.Context, userID, gameID int64) (int, error) {
	evt := AnalysisCompletedEvent{
		Type:      "game_analysis_completed",
		UserID:    userID,
		GameID:    gameID,
		Timestamp: time.Now(),
	}
	return b.Publish(ctx, AnalysisChannel(userID), evt)
}

// Subscription wraps a redis.PubSub, exposing the poll/close shape the
// core expects rather than the raw channel-of-channels API.
type Subscription struct {
	pubsub *redis.PubSub
	ch     <-chan *redis.Message
}

// Subscribe opens a subscription on channel. The caller must call Close
// when done to release the underlying connection.
func (b *Bus) Subscribe(ctx context.Context, channel string) *Subscription {
	ps := b.client.Subscribe(ctx, channel)
	return &Subscription{pubsub: ps, ch: ps.Channel()}
}

// Poll waits up to timeout for the next message, returning nil if none
// arrived. A zero timeout blocks until the subscription is closed or a
// message arrives.
func (s *Subscription) Poll(timeout time.Duration) *Message {
	if timeout <= 0 {
		msg, ok := <-s.ch
		if !ok {
			return nil
		}
		return &Message{Channel: msg.Channel, Payload: msg.Payload}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg, ok := <-s.ch:
		if !ok {
			return nil
		}
		return &Message{Channel: msg.Channel, Payload: msg.Payload}
	case <-timer.C:
		return nil
	}
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

// NewClient builds the shared Redis client from a broker URL
// (redis://host:port/db), used for both the event bus and the task queue.
func NewClient(brokerURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("eventbus: invalid broker url: %v", err)
	}
	return redis.NewClient(opts), nil
}
