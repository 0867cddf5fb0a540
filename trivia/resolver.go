package trivia

import (
	"github.com/pkg/errors"

	"github.com/Soypete/twitch-trivia-bot/types"
)

// ErrNotFound is returned by Resolve when no record has the question.
var ErrNotFound = errors.New("trivia answer not found")

// Resolve returns the first record whose question equals question exactly.
// Records keep the order the API returned them in.
func Resolve(records []types.TriviaRecord, question string) (types.TriviaRecord, error) {
	for _, r := range records {
		if r.Question == question {
			return r, nil
		}
	}
	return types.TriviaRecord{}, ErrNotFound
}
