package trivia

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Soypete/twitch-trivia-bot/types"
)

func TestResolve(t *testing.T) {
	records := []types.TriviaRecord{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}

	got, err := Resolve(records, "Q2")
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Answer)
}

func TestResolveFirstMatchWins(t *testing.T) {
	records := []types.TriviaRecord{
		{Question: "Q", Answer: "first", Category: "Animals"},
		{Question: "Q", Answer: "second", Category: "Pepega"},
	}

	got, err := Resolve(records, "Q")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Answer)
}

func TestResolveIsExact(t *testing.T) {
	records := []types.TriviaRecord{
		{Question: "What barks?", Answer: "dog"},
	}

	for _, q := range []string{"what barks?", "What barks? ", "What  barks?", "What barks", ""} {
		_, err := Resolve(records, q)
		assert.True(t, errors.Is(err, ErrNotFound), "question %q", q)
	}
}

func TestResolveEmpty(t *testing.T) {
	_, err := Resolve(nil, "Q1")
	assert.ErrorIs(t, err, ErrNotFound)
}
