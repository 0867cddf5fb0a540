// Package console is the operator's line based terminal: one question out,
// one line back.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/Soypete/twitch-trivia-bot/confirm"
	"github.com/Soypete/twitch-trivia-bot/logging"
)

// Responder receives operator lines.
type Responder interface {
	Respond(ctx context.Context, response string) (bool, error)
}

// Console reads operator input line by line.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
	logger  *logging.Logger
}

// New creates a Console, defaulting to stdin and stdout.
func New(in io.Reader, out io.Writer, logger *logging.Logger) *Console {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Console{
		scanner: bufio.NewScanner(in),
		out:     out,
		logger:  logger,
	}
}

// Ask writes question and returns the next line, trimmed.
func (c *Console) Ask(question string) (string, error) {
	if _, err := fmt.Fprint(c.out, question); err != nil {
		return "", errors.Wrap(err, "failed to write prompt")
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", errors.Wrap(err, "failed to read answer")
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

// Run feeds every operator line to r until input ends or ctx is done.
func (c *Console) Run(ctx context.Context, r Responder) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for c.scanner.Scan() {
			select {
			case lines <- c.scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- c.scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return errors.Wrap(err, "failed to read operator input")
					}
				default:
				}
				c.logger.Info("operator input closed")
				return nil
			}
			c.handleLine(ctx, r, line)
		}
	}
}

func (c *Console) handleLine(ctx context.Context, r Responder, line string) {
	_, err := r.Respond(ctx, line)
	switch {
	case err == nil:
	case errors.Is(err, confirm.ErrNoPending):
		c.logger.Debug("ignoring operator input, no question pending")
	default:
		c.logger.Error("failed to send answer", "error", err.Error())
	}
}
