// Package trivia parses trivia bot messages, looks questions up on the trivia
// API and resolves the matching answer.
package trivia

import (
	"regexp"
	"strings"

	"github.com/Soypete/twitch-trivia-bot/types"
)

const (
	// CategoryMarker must be the second token of every trivia message.
	CategoryMarker = "category:"
	// DefaultSeparator ends the category and starts the question.
	DefaultSeparator = "question:"
	// DefaultTerminator is the emote the trivia bot posts after the category.
	// It only ends the category; a question may contain it.
	DefaultTerminator = ":)"
	// DefaultStripToken is the invisible tag character appended by the trivia
	// bot to get around duplicate message filtering.
	DefaultStripToken = "\U000E0000"
)

var progressPattern = regexp.MustCompile(`^\d+/\d+$`)

// Tokenize removes stripToken, collapses ASCII whitespace and splits text into
// space separated tokens. Other Unicode spaces, such as U+00A0, stay inside
// their token so questions keep matching the API text.
func Tokenize(text, stripToken string) []string {
	if stripToken != "" {
		text = strings.ReplaceAll(text, stripToken, "")
	}
	return strings.FieldsFunc(text, isASCIISpace)
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// Parser extracts a trivia request from a tokenized chat message.
type Parser struct {
	Separator  string
	Terminator string
	// QuestionTerminator ends the question when set. Empty keeps every
	// token after the separator.
	QuestionTerminator string
}

// NewParser returns a Parser, falling back to the default markers for empty values.
func NewParser(separator, terminator string) Parser {
	if separator == "" {
		separator = DefaultSeparator
	}
	if terminator == "" {
		terminator = DefaultTerminator
	}
	return Parser{Separator: separator, Terminator: terminator}
}

// ParseMessage tokenizes text and parses it.
func (p Parser) ParseMessage(text, stripToken string) (types.TriviaRequest, bool) {
	return p.Parse(Tokenize(text, stripToken))
}

// Parse returns the category and question encoded in tokens. The second
// return value is false when tokens are not a trivia message, including
// when the separator is missing. tokens is never modified.
//
// Example input:
//
//	1/3 category: Pepega :) question: Shanghai Pudong ... municipality? Pepega
func (p Parser) Parse(tokens []string) (types.TriviaRequest, bool) {
	if len(tokens) < 2 || !progressPattern.MatchString(tokens[0]) || tokens[1] != CategoryMarker {
		return types.TriviaRequest{}, false
	}

	sep := indexFrom(tokens, p.separator(), 2)
	if sep < 0 {
		return types.TriviaRequest{}, false
	}

	categoryEnd := sep
	if term := indexFrom(tokens[:sep], p.Terminator, 2); term >= 0 {
		categoryEnd = term
	}

	questionEnd := len(tokens)
	if term := indexFrom(tokens, p.QuestionTerminator, sep+1); term >= 0 {
		questionEnd = term
	}

	req := types.TriviaRequest{
		Category: strings.Join(tokens[2:categoryEnd], " "),
		Question: strings.Join(tokens[sep+1:questionEnd], " "),
	}
	if req.Category == "" || req.Question == "" {
		return types.TriviaRequest{}, false
	}
	return req, true
}

func (p Parser) separator() string {
	if p.Separator == "" {
		return DefaultSeparator
	}
	return p.Separator
}

// indexFrom returns the index of the first token equal to marker at or after
// start, or -1. An empty marker never matches.
func indexFrom(tokens []string, marker string, start int) int {
	if marker == "" {
		return -1
	}
	for i := start; i < len(tokens); i++ {
		if tokens[i] == marker {
			return i
		}
	}
	return -1
}
