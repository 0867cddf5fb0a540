package twitchirc

import (
	"time"

	v2 "github.com/gempir/go-twitch-irc/v2"

	"github.com/Soypete/twitch-trivia-bot/types"
)

func toChatMessage(msg v2.PrivateMessage) types.ChatMessage {
	sent := msg.Time
	if sent.IsZero() {
		sent = time.Now()
	}
	return types.ChatMessage{
		SenderID:       msg.User.ID,
		SenderUsername: msg.User.Name,
		Channel:        msg.Channel,
		Text:           msg.Message,
		Time:           sent,
	}
}
