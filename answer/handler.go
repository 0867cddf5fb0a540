// Package answer turns trivia bot messages into confirmed chat answers.
package answer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Soypete/twitch-trivia-bot/confirm"
	"github.com/Soypete/twitch-trivia-bot/logging"
	"github.com/Soypete/twitch-trivia-bot/metrics"
	"github.com/Soypete/twitch-trivia-bot/trivia"
	"github.com/Soypete/twitch-trivia-bot/types"
)

// Lookup fetches trivia records for categories.
type Lookup interface {
	Questions(ctx context.Context, categories ...string) ([]types.TriviaRecord, error)
}

// Confirmer prompts the operator before an answer is sent.
type Confirmer interface {
	Request(ctx context.Context, channel, question, answer string) *confirm.Pending
}

// Identity is the trivia bot whose messages are answered. ID takes precedence
// over Username when both are set.
type Identity struct {
	ID       string
	Username string
}

// Allows reports whether msg was sent by the trivia bot.
func (id Identity) Allows(msg types.ChatMessage) bool {
	if id.ID != "" {
		return msg.SenderID == id.ID
	}
	if id.Username != "" {
		return strings.EqualFold(msg.SenderUsername, id.Username)
	}
	return false
}

// Handler runs the answer pipeline for each chat message.
type Handler struct {
	identity   Identity
	parser     trivia.Parser
	stripToken string
	lookup     Lookup
	confirmer  Confirmer
	logger     *logging.Logger
}

// NewHandler wires a Handler.
func NewHandler(identity Identity, parser trivia.Parser, stripToken string, lookup Lookup, confirmer Confirmer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		identity:   identity,
		parser:     parser,
		stripToken: stripToken,
		lookup:     lookup,
		confirmer:  confirmer,
		logger:     logger,
	}
}

// Name identifies the handler as a message queue consumer.
func (h *Handler) Name() string {
	return "trivia-answer"
}

// ProcessMessage implements messagequeue.Consumer.
func (h *Handler) ProcessMessage(ctx context.Context, msg types.ChatMessage) {
	h.HandleChat(ctx, msg)
}

// HandleChat answers msg if it is a trivia question from the trivia bot. It
// returns the pending confirmation it started, or nil. Failures are logged
// and end the turn.
func (h *Handler) HandleChat(ctx context.Context, msg types.ChatMessage) *confirm.Pending {
	if !h.identity.Allows(msg) {
		metrics.TriviaIgnoredSenderCount.Add(1)
		return nil
	}

	req, ok := h.parser.ParseMessage(msg.Text, h.stripToken)
	if !ok {
		return nil
	}
	metrics.TriviaRequestCount.Add(1)

	ctx = logging.ContextWithTraceID(ctx, uuid.NewString())
	logger := h.logger.WithContext(ctx)
	logger.Debug("trivia question received", "category", req.Category, "channel", msg.Channel)

	start := time.Now()
	records, err := h.lookup.Questions(ctx, req.Category)
	if err != nil {
		metrics.TriviaLookupDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		metrics.TriviaLookupFailCount.Add(1)
		logger.Error("failed to look up trivia", "category", req.Category, "error", err.Error())
		return nil
	}
	metrics.TriviaLookupDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	record, err := trivia.Resolve(records, req.Question)
	if err != nil {
		metrics.TriviaAnswerNotFound.Add(1)
		logger.Warn("trivia for the question and category '"+req.Category+"' could not be found",
			"question", req.Question,
			"records", len(records),
		)
		return nil
	}

	return h.confirmer.Request(ctx, msg.Channel, req.Question, record.Answer)
}
