package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broker moves events between processes. Run delivers every published event
// to deliver until ctx is done.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	Run(ctx context.Context, deliver func(Event)) error
}

const defaultChannel = "nekocare:changes"

// RedisBroker publishes events on a redis pub/sub channel so every API
// instance sees every change.
type RedisBroker struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisBroker(rdb *redis.Client, log *zap.Logger) *RedisBroker {
	return &RedisBroker{rdb: rdb, channel: defaultChannel, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBroker) Run(ctx context.Context, deliver func(Event)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("realtime: bad event payload", zap.Error(err))
				continue
			}
			deliver(ev)
		}
	}
}

// LocalBroker delivers events within the process. It is used in demo mode
// and tests.
type LocalBroker struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]func(Event)
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{handlers: make(map[int]func(Event))}
}

func (b *LocalBroker) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(ev)
	}
	return nil
}

func (b *LocalBroker) Run(ctx context.Context, deliver func(Event)) error {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = deliver
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	delete(b.handlers, id)
	b.mu.Unlock()
	return nil
}
