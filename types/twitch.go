package types

import (
	"time"
)

// ChatMessage represents a message sent in Twitch chat. Only the fields the
// trivia pipeline needs are kept.
type ChatMessage struct {
	SenderID       string
	SenderUsername string
	Channel        string
	Text           string
	Time           time.Time
}
