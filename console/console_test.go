package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Soypete/twitch-trivia-bot/confirm"
	"github.com/Soypete/twitch-trivia-bot/logging"
)

type recordingResponder struct {
	lines []string
	err   error
}

func (r *recordingResponder) Respond(ctx context.Context, response string) (bool, error) {
	r.lines = append(r.lines, response)
	return r.err == nil, r.err
}

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("  soypetetech \n"), &out, logging.NewLogger(logging.LogLevelError, nil))

	channel, err := c.Ask("Enter a channel to join: ")
	require.NoError(t, err)
	assert.Equal(t, "soypetetech", channel)
	assert.Equal(t, "Enter a channel to join: ", out.String())
}

func TestAskEOF(t *testing.T) {
	c := New(strings.NewReader(""), io.Discard, logging.NewLogger(logging.LogLevelError, nil))

	_, err := c.Ask("Enter a channel to join: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestRunFeedsLines(t *testing.T) {
	r := &recordingResponder{}
	c := New(strings.NewReader("y\nno\n\n"), io.Discard, logging.NewLogger(logging.LogLevelError, nil))

	require.NoError(t, c.Run(context.Background(), r))
	assert.Equal(t, []string{"y", "no", ""}, r.lines)
}

func TestRunKeepsGoingOnErrors(t *testing.T) {
	for _, respErr := range []error{confirm.ErrNoPending, errors.New("not connected")} {
		r := &recordingResponder{err: respErr}
		c := New(strings.NewReader("y\ny\n"), io.Discard, logging.NewLogger(logging.LogLevelError, nil))

		require.NoError(t, c.Run(context.Background(), r))
		assert.Len(t, r.lines, 2)
	}
}

func TestRunWithGate(t *testing.T) {
	gate := confirm.NewGate(nil, io.Discard, logging.NewLogger(logging.LogLevelError, nil))
	gate.Request(context.Background(), "c", "What barks?", "dog")

	c := New(strings.NewReader("n\n"), io.Discard, logging.NewLogger(logging.LogLevelError, nil))
	require.NoError(t, c.Run(context.Background(), gate))
	assert.Nil(t, gate.Pending())
}

func TestRunStopsOnContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := New(pr, io.Discard, logging.NewLogger(logging.LogLevelError, nil))

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, &recordingResponder{}) }()

	cancel()
	assert.NoError(t, <-done)
}
