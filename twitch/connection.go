package twitchirc

import (
	"context"
	"sync/atomic"
	"time"

	v2 "github.com/gempir/go-twitch-irc/v2"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/Soypete/twitch-trivia-bot/config"
	"github.com/Soypete/twitch-trivia-bot/logging"
	"github.com/Soypete/twitch-trivia-bot/metrics"
	"github.com/Soypete/twitch-trivia-bot/types"
)

// ErrNotConnected is returned by Say while the IRC connection is down.
var ErrNotConnected = errors.New("not connected to twitch IRC")

const connectHint = "Unable to connect. Check your internet connection."

// Publisher receives every chat message read from the channel.
type Publisher interface {
	Publish(msg types.ChatMessage) bool
}

// ircClient is the part of the go-twitch-irc client the bot uses.
type ircClient interface {
	Say(channel, text string)
	Connect() error
	Disconnect() error
}

// IRC Connection to the twitch IRC server.
type IRC struct {
	client ircClient

	channel          string
	username         string
	conf             config.TwitchConfig
	tok              *oauth2.Token
	tokenSource      string
	tokenRefreshTime time.Time // Time when the token was last refreshed
	authCode         chan string
	publisher        Publisher
	logger           *logging.Logger

	connected atomic.Bool
}

// SetupTwitchIRC authenticates the bot for channel. Messages read once
// connected are handed to publisher.
func SetupTwitchIRC(ctx context.Context, conf config.TwitchConfig, channel string, publisher Publisher, logger *logging.Logger) (*IRC, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if channel == "" {
		return nil, errors.New("a channel is required")
	}

	irc := &IRC{
		channel:   channel,
		username:  conf.Username,
		conf:      conf,
		publisher: publisher,
		logger:    logger.WithFields(map[string]interface{}{"channel": channel}),
	}

	err := irc.AuthTwitch(ctx)
	if err != nil {
		logger.Error("failed to authenticate with twitch", "error", err.Error())
		return nil, errors.Wrap(err, "failed to authenticate with twitch")
	}

	logger.Info("authenticated with twitch IRC", "tokenSource", irc.tokenSource)
	return irc, nil
}

// ConnectIRC builds the IRC client, joins the channel and registers the
// message handlers. Call Run to open the connection.
func (irc *IRC) ConnectIRC() error {
	if irc.tok == nil || irc.tok.AccessToken == "" {
		return errors.New("no twitch token, authenticate first")
	}

	irc.logger.Info("connecting to twitch IRC")
	c := v2.NewClient(irc.username, "oauth:"+irc.tok.AccessToken)
	c.Join(irc.channel)
	c.OnConnect(func() {
		irc.connected.Store(true)
		metrics.TwitchConnectionCount.Add(1)
		irc.logger.Info("* Connected to " + c.IrcAddress)
		irc.logger.Info("Listening for any trivia questions.")
	})

	c.OnPrivateMessage(func(msg v2.PrivateMessage) {
		metrics.TwitchMessageRecievedCount.Add(1)
		irc.logger.Debug("received message", "user", msg.User.Name)
		irc.publisher.Publish(toChatMessage(msg))
	})

	irc.client = c
	return nil
}

// Run holds the connection open until ctx is done. A failed connection is
// logged with a hint and Run keeps waiting for ctx, so the process stays up.
func (irc *IRC) Run(ctx context.Context) error {
	if irc.client == nil {
		return errors.New("twitch IRC client not set up, call ConnectIRC first")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- irc.client.Connect()
	}()

	select {
	case <-ctx.Done():
		irc.connected.Store(false)
		if err := irc.client.Disconnect(); err != nil {
			irc.logger.Error("error disconnecting twitch client", "error", err.Error())
		}
		return nil
	case err := <-errCh:
		irc.connected.Store(false)
		if err != nil && !errors.Is(err, v2.ErrClientDisconnected) {
			irc.logger.Error(connectHint, "error", err.Error())
		}
	}

	<-ctx.Done()
	return nil
}

// AccessToken returns the token used to log in, or an empty string.
func (irc *IRC) AccessToken() string {
	if irc.tok == nil {
		return ""
	}
	return irc.tok.AccessToken
}

// Connected reports whether the IRC connection is established.
func (irc *IRC) Connected() bool {
	return irc.connected.Load()
}

// Say sends text to channel. It implements confirm.Sender.
func (irc *IRC) Say(ctx context.Context, channel, text string) error {
	if irc.client == nil || !irc.connected.Load() {
		metrics.TwitchMessageSendFailCount.Add(1)
		return ErrNotConnected
	}

	irc.client.Say(channel, text)

	metrics.TwitchMessageSentCount.Add(1)
	irc.logger.WithContext(ctx).Debug("sent message to twitch", "channel", channel, "length", len(text))
	return nil
}
