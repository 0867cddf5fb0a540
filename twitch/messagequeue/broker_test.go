package messagequeue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Soypete/twitch-trivia-bot/logging"
	"github.com/Soypete/twitch-trivia-bot/types"
)

type recordingConsumer struct {
	mu   sync.Mutex
	seen []string
	done chan struct{}
	want int
}

func (r *recordingConsumer) ProcessMessage(ctx context.Context, msg types.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, msg.Text)
	if len(r.seen) == r.want {
		close(r.done)
	}
}

func (r *recordingConsumer) Name() string { return "recorder" }

func TestBrokerDeliversInOrder(t *testing.T) {
	logger := logging.NewLogger(logging.LogLevelError, nil)
	broker := NewBroker(10, logger)
	consumer := &recordingConsumer{done: make(chan struct{}), want: 3}
	broker.Subscribe(consumer)

	for _, text := range []string{"one", "two", "three"} {
		require.True(t, broker.Publish(types.ChatMessage{Text: text}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- broker.Run(ctx) }()

	select {
	case <-consumer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("messages were not delivered")
	}

	consumer.mu.Lock()
	assert.Equal(t, []string{"one", "two", "three"}, consumer.seen)
	consumer.mu.Unlock()

	cancel()
	assert.NoError(t, <-errCh)
}

func TestBrokerDropsWhenFull(t *testing.T) {
	broker := NewBroker(1, logging.NewLogger(logging.LogLevelError, nil))

	assert.True(t, broker.Publish(types.ChatMessage{Text: "first"}))
	assert.False(t, broker.Publish(types.ChatMessage{Text: "second"}))
	assert.Equal(t, 1, broker.GetQueueLength())
}
