// Package messagequeue decouples the Twitch IRC reader from message handling.
// Messages are delivered to consumers one at a time in arrival order.
package messagequeue

import (
	"context"
	"sync"

	"github.com/Soypete/twitch-trivia-bot/logging"
	"github.com/Soypete/twitch-trivia-bot/metrics"
	"github.com/Soypete/twitch-trivia-bot/types"
)

// Consumer is an interface for consuming messages from the queue
type Consumer interface {
	ProcessMessage(ctx context.Context, msg types.ChatMessage)
	Name() string
}

// Broker distributes messages to multiple consumers
type Broker struct {
	consumers []Consumer
	msgQueue  chan types.ChatMessage
	logger    *logging.Logger
	mu        sync.RWMutex
}

// NewBroker creates a new message broker
func NewBroker(queueSize int, logger *logging.Logger) *Broker {
	if logger == nil {
		logger = logging.Default()
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	return &Broker{
		consumers: make([]Consumer, 0),
		msgQueue:  make(chan types.ChatMessage, queueSize),
		logger:    logger,
	}
}

// Subscribe adds a consumer to receive messages
func (b *Broker) Subscribe(consumer Consumer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consumers = append(b.consumers, consumer)
	b.logger.Info("consumer subscribed to message broker", "consumer", consumer.Name())
}

// Publish sends a message to the queue (non-blocking)
func (b *Broker) Publish(msg types.ChatMessage) bool {
	select {
	case b.msgQueue <- msg:
		return true
	default:
		metrics.TwitchMessageDroppedCount.Add(1)
		b.logger.Warn("message queue full, dropping message", "user", msg.SenderUsername)
		return false
	}
}

// Run processes messages until ctx is done.
func (b *Broker) Run(ctx context.Context) error {
	b.mu.RLock()
	b.logger.Info("message broker started", "consumers", len(b.consumers))
	b.mu.RUnlock()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("message broker shutting down")
			return nil
		case msg := <-b.msgQueue:
			b.fanout(ctx, msg)
		}
	}
}

// fanout hands a message to every consumer and waits for all of them, so the
// next message is not started before this one is done.
func (b *Broker) fanout(ctx context.Context, msg types.ChatMessage) {
	b.mu.RLock()
	consumers := b.consumers
	b.mu.RUnlock()

	var wg sync.WaitGroup
	for _, consumer := range consumers {
		wg.Add(1)
		go func(c Consumer) {
			defer wg.Done()
			c.ProcessMessage(ctx, msg)
		}(consumer)
	}
	wg.Wait()
}

// GetQueueLength returns the current queue depth
func (b *Broker) GetQueueLength() int {
	return len(b.msgQueue)
}
