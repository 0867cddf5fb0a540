package answer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Soypete/twitch-trivia-bot/confirm"
	"github.com/Soypete/twitch-trivia-bot/logging"
	"github.com/Soypete/twitch-trivia-bot/metrics"
	"github.com/Soypete/twitch-trivia-bot/trivia"
	"github.com/Soypete/twitch-trivia-bot/types"
)

const (
	pepegaQuestion = "Shanghai Pudong International Airport is an airport in which municipality? Pepega"
	pepegaMessage  = "1/3 category: Pepega :) question: " + pepegaQuestion
)

type fakeLookup struct {
	records    []types.TriviaRecord
	err        error
	categories [][]string
}

func (f *fakeLookup) Questions(ctx context.Context, categories ...string) ([]types.TriviaRecord, error) {
	f.categories = append(f.categories, categories)
	return f.records, f.err
}

type fakeSender struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (f *fakeSender) Say(ctx context.Context, channel, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = map[string][]string{}
	}
	f.sent[channel] = append(f.sent[channel], text)
	return nil
}

func newTestHandler(identity Identity, lookup Lookup, sender confirm.Sender) (*Handler, *confirm.Gate) {
	logger := logging.NewLogger(logging.LogLevelError, nil)
	gate := confirm.NewGate(sender, io.Discard, logger)
	h := NewHandler(identity, trivia.NewParser("", ""), trivia.DefaultStripToken, lookup, gate, logger)
	return h, gate
}

func TestIdentityAllows(t *testing.T) {
	msg := types.ChatMessage{SenderID: "123", SenderUsername: "Gazatu2"}

	assert.True(t, Identity{ID: "123"}.Allows(msg))
	assert.False(t, Identity{ID: "456", Username: "gazatu2"}.Allows(msg))
	assert.True(t, Identity{Username: "gazatu2"}.Allows(msg))
	assert.True(t, Identity{Username: "GAZATU2"}.Allows(msg))
	assert.False(t, Identity{Username: "someone"}.Allows(msg))
	assert.False(t, Identity{}.Allows(msg))
}

func TestHandleChatEndToEnd(t *testing.T) {
	lookup := &fakeLookup{records: []types.TriviaRecord{
		{Question: "Something else", Answer: "no"},
		{Question: pepegaQuestion, Answer: "Shanghai", Category: "Pepega"},
	}}
	sender := &fakeSender{}
	h, gate := newTestHandler(Identity{ID: "42"}, lookup, sender)
	ctx := context.Background()

	p := h.HandleChat(ctx, types.ChatMessage{
		SenderID:       "42",
		SenderUsername: "gazatu2",
		Channel:        "somechannel",
		Text:           pepegaMessage + " " + trivia.DefaultStripToken,
	})
	require.NotNil(t, p)
	assert.Equal(t, [][]string{{"Pepega"}}, lookup.categories)
	assert.Equal(t, "Shanghai", p.Answer)
	assert.Equal(t, "somechannel", p.Channel)

	sent, err := gate.Respond(ctx, "y")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, []string{"Shanghai"}, sender.sent["somechannel"])
}

func TestHandleChatIgnoresOtherSenders(t *testing.T) {
	lookup := &fakeLookup{records: []types.TriviaRecord{{Question: pepegaQuestion, Answer: "Shanghai"}}}
	h, gate := newTestHandler(Identity{ID: "42", Username: "gazatu2"}, lookup, &fakeSender{})
	before := metrics.TriviaIgnoredSenderCount.Value()

	p := h.HandleChat(context.Background(), types.ChatMessage{
		SenderID:       "7",
		SenderUsername: "gazatu2",
		Channel:        "somechannel",
		Text:           pepegaMessage,
	})
	assert.Nil(t, p)
	assert.Empty(t, lookup.categories)
	assert.Nil(t, gate.Pending())
	assert.Equal(t, before+1, metrics.TriviaIgnoredSenderCount.Value())
}

func TestHandleChatIgnoresNonTrivia(t *testing.T) {
	lookup := &fakeLookup{}
	h, gate := newTestHandler(Identity{Username: "gazatu2"}, lookup, &fakeSender{})

	for _, text := range []string{"hello chat", "1/3 question: x", "1/3 category: Pepega no separator"} {
		p := h.HandleChat(context.Background(), types.ChatMessage{SenderUsername: "gazatu2", Text: text})
		assert.Nil(t, p, text)
	}
	assert.Empty(t, lookup.categories)
	assert.Nil(t, gate.Pending())
}

func TestHandleChatLookupFailure(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("dial tcp: no such host")}
	h, gate := newTestHandler(Identity{ID: "42"}, lookup, &fakeSender{})

	p := h.HandleChat(context.Background(), types.ChatMessage{SenderID: "42", Channel: "c", Text: pepegaMessage})
	assert.Nil(t, p)
	assert.Len(t, lookup.categories, 1)
	assert.Nil(t, gate.Pending())
}

func TestHandleChatAnswerNotFound(t *testing.T) {
	lookup := &fakeLookup{records: []types.TriviaRecord{{Question: "Q1", Answer: "A1"}}}
	h, gate := newTestHandler(Identity{ID: "42"}, lookup, &fakeSender{})

	p := h.HandleChat(context.Background(), types.ChatMessage{SenderID: "42", Channel: "c", Text: pepegaMessage})
	assert.Nil(t, p)
	assert.Nil(t, gate.Pending())
}

func TestHandleChatNewQuestionCancelsPending(t *testing.T) {
	lookup := &fakeLookup{records: []types.TriviaRecord{
		{Question: "What barks?", Answer: "dog"},
		{Question: "What meows?", Answer: "cat"},
	}}
	sender := &fakeSender{}
	h, gate := newTestHandler(Identity{ID: "42"}, lookup, sender)
	ctx := context.Background()

	first := h.HandleChat(ctx, types.ChatMessage{SenderID: "42", Channel: "c", Text: "1/3 category: Animals :) question: What barks?"})
	second := h.HandleChat(ctx, types.ChatMessage{SenderID: "42", Channel: "c", Text: "2/3 category: Animals :) question: What meows?"})
	require.NotNil(t, first)
	require.NotNil(t, second)

	_, err := gate.Resolve(ctx, first, "y")
	assert.ErrorIs(t, err, confirm.ErrSuperseded)
	assert.Empty(t, sender.sent)

	sent, err := gate.Respond(ctx, "Yes")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, []string{"cat"}, sender.sent["c"])
}
