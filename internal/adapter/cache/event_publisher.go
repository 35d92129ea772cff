package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

const eventChannelPrefix = "auction:events:"

var _ port.EventSink = (*EventPublisher)(nil)

// EventPublisher forwards engine notifications to Redis Pub/Sub, one channel
// per event type. Delivery is best-effort; a publish failure is logged and
// never fails the operation that produced the event.
type EventPublisher struct {
	rdb *redis.Client
	log logrus.FieldLogger
}

func NewEventPublisher(rdb *redis.Client, log logrus.FieldLogger) *EventPublisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EventPublisher{rdb: rdb, log: log}
}

type envelope struct {
	Type    domain.EventType `json:"type"`
	Payload domain.Event     `json:"payload"`
}

func (p *EventPublisher) Emit(ctx context.Context, e domain.Event) {
	b, err := json.Marshal(envelope{Type: e.Type(), Payload: e})
	if err != nil {
		p.log.WithError(err).WithField("event", e.Type()).Warn("event marshal failed")
		return
	}
	channel := eventChannelPrefix + string(e.Type())
	if err := p.rdb.Publish(ctx, channel, b).Err(); err != nil {
		p.log.WithError(err).WithField("event", e.Type()).Warn("event publish failed")
	}
}
