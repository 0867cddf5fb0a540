// Package confirm holds the operator confirmation that gates every answer
// sent to chat. Only one confirmation can be pending at a time; asking for a
// new one cancels the previous.
package confirm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Soypete/twitch-trivia-bot/logging"
	"github.com/Soypete/twitch-trivia-bot/metrics"
)

var (
	// ErrNoPending is returned when a response arrives while nothing is pending.
	ErrNoPending = errors.New("no confirmation pending")
	// ErrSuperseded is returned when resolving a confirmation that was replaced.
	ErrSuperseded = errors.New("confirmation was superseded")
)

// Sender delivers an answer to a chat channel.
type Sender interface {
	Say(ctx context.Context, channel, text string) error
}

// Pending is a confirmation waiting for the operator.
type Pending struct {
	ID       uuid.UUID
	Channel  string
	Question string
	Answer   string

	done chan struct{}
	once sync.Once
}

// Done is closed when the confirmation is resolved or cancelled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

func (p *Pending) close() {
	p.once.Do(func() { close(p.done) })
}

// Gate owns the single pending confirmation slot.
type Gate struct {
	mu      sync.Mutex
	pending *Pending

	sender Sender
	out    io.Writer
	logger *logging.Logger
}

// NewGate creates a gate writing prompts to out, or stdout when nil.
func NewGate(sender Sender, out io.Writer, logger *logging.Logger) *Gate {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{
		sender: sender,
		out:    out,
		logger: logger,
	}
}

// IsAffirmative reports whether an operator response means yes.
func IsAffirmative(response string) bool {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

// Request cancels any pending confirmation and prompts the operator about
// sending answer to channel.
func (g *Gate) Request(ctx context.Context, channel, question, answer string) *Pending {
	p := &Pending{
		ID:       uuid.New(),
		Channel:  channel,
		Question: question,
		Answer:   answer,
		done:     make(chan struct{}),
	}
	logger := g.logger.WithContext(ctx)

	g.mu.Lock()
	if prev := g.pending; prev != nil {
		prev.close()
		metrics.ConfirmationCancelledCount.Add(1)
		logger.Info("cancelled pending confirmation", "confirmationID", prev.ID.String())
	}
	g.pending = p
	_, err := fmt.Fprintf(g.out, "\nShould I answer the question, %s? (answer: %s) Yes/No or Y/N: ", question, answer)
	g.mu.Unlock()

	if err != nil {
		logger.Error("failed to write confirmation prompt", "error", err.Error())
	}
	metrics.ConfirmationPromptCount.Add(1)
	logger.Debug("confirmation requested", "confirmationID", p.ID.String(), "channel", channel)
	return p
}

// Pending returns the confirmation currently waiting, or nil.
func (g *Gate) Pending() *Pending {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Respond resolves the current confirmation with an operator response. It
// reports whether the answer was sent.
func (g *Gate) Respond(ctx context.Context, response string) (bool, error) {
	g.mu.Lock()
	p := g.pending
	g.mu.Unlock()

	if p == nil {
		return false, ErrNoPending
	}
	return g.Resolve(ctx, p, response)
}

// Resolve answers p. A confirmation that has been replaced by a newer one is
// never sent.
func (g *Gate) Resolve(ctx context.Context, p *Pending, response string) (bool, error) {
	g.mu.Lock()
	if g.pending != p {
		g.mu.Unlock()
		return false, ErrSuperseded
	}
	g.pending = nil
	g.mu.Unlock()
	p.close()

	logger := g.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"confirmationID": p.ID.String(),
	})

	if !IsAffirmative(response) {
		metrics.ConfirmationDeclinedCount.Add(1)
		logger.Debug("operator declined answer")
		return false, nil
	}

	metrics.ConfirmationAcceptedCount.Add(1)
	if g.sender == nil {
		return false, errors.New("no sender configured")
	}
	if err := g.sender.Say(ctx, p.Channel, p.Answer); err != nil {
		return false, errors.Wrapf(err, "failed to send answer to %s", p.Channel)
	}
	logger.Info("answer sent", "channel", p.Channel)
	return true, nil
}

// Close cancels the pending confirmation, if any.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending != nil {
		g.pending.close()
		g.pending = nil
	}
}
