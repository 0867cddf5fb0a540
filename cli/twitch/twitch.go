package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Soypete/twitch-trivia-bot/answer"
	"github.com/Soypete/twitch-trivia-bot/config"
	"github.com/Soypete/twitch-trivia-bot/confirm"
	"github.com/Soypete/twitch-trivia-bot/console"
	"github.com/Soypete/twitch-trivia-bot/logging"
	"github.com/Soypete/twitch-trivia-bot/metrics"
	"github.com/Soypete/twitch-trivia-bot/trivia"
	twitchirc "github.com/Soypete/twitch-trivia-bot/twitch"
	"github.com/Soypete/twitch-trivia-bot/twitch/helix"
	"github.com/Soypete/twitch-trivia-bot/twitch/messagequeue"
)

func main() {
	var configPath string
	var envPath string
	var logLevel string
	var channel string

	flag.StringVar(&configPath, "config", "", "Path to a YAML config file (e.g., 'configs/trivia.yaml')")
	flag.StringVar(&envPath, "env", ".env", "Path to a dotenv file, skipped when missing")
	flag.StringVar(&logLevel, "errorLevel", "", "Log level (debug, info, warn, error), overrides LOG_LEVEL")
	flag.StringVar(&channel, "channel", "", "Twitch channel to join, overrides TWITCH_CHANNEL")
	flag.Parse()

	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		logging.Default().Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if channel != "" {
		cfg.Twitch.Channel = channel
	}

	// Initialize logger
	logger := logging.NewLoggerWithOptions(logging.Options{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Format: logging.Format(cfg.Logging.Format),
		Output: os.Stdout,
		File:   cfg.Logging.File,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err.Error())
		os.Exit(1)
	}

	operator := console.New(os.Stdin, os.Stdout, logger)

	// Only a single channel can be joined at a time. Run another process
	// for another channel.
	if cfg.Twitch.NormalizedChannel() == "" {
		cfg.Twitch.Channel, err = operator.Ask("\nEnter a channel to join: ")
		if err != nil || cfg.Twitch.NormalizedChannel() == "" {
			logger.Error("a channel is required")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// listen and serve for metrics server.
	server := metrics.SetupServer(cfg.Metrics.Addr)

	broker := messagequeue.NewBroker(100, logger)

	irc, err := twitchirc.SetupTwitchIRC(ctx, cfg.Twitch, cfg.Twitch.NormalizedChannel(), broker, logger)
	if err != nil {
		logger.Error("failed to setup twitch IRC", "error", err.Error())
		os.Exit(1)
	}
	if err := irc.ConnectIRC(); err != nil {
		logger.Error("failed to connect to twitch IRC", "error", err.Error())
		os.Exit(1)
	}

	// Usernames can change, ids cannot. Resolve the id when the app
	// credentials allow it.
	if cfg.TriviaBot.ID == "" && cfg.Twitch.ClientID != "" {
		users := helix.NewClient(cfg.Twitch.ClientID, irc.AccessToken(), logger)
		id, err := users.GetUserIDByLogin(ctx, cfg.TriviaBot.Username)
		if err != nil {
			logger.Warn("could not resolve trivia bot id, matching by username", "username", cfg.TriviaBot.Username, "error", err.Error())
		} else {
			cfg.TriviaBot.ID = id
			logger.Info("resolved trivia bot id", "username", cfg.TriviaBot.Username, "id", id)
		}
	}

	// Register auth health endpoint
	server.RegisterAuthHealthHandler(irc.AuthHealthHandler())
	logger.Debug("auth health endpoint registered at /healthz/auth")

	gate := confirm.NewGate(irc, os.Stdout, logger)
	parser := trivia.NewParser(cfg.Trivia.Separator, cfg.Trivia.Terminator)
	parser.QuestionTerminator = cfg.Trivia.QuestionTerminator
	handler := answer.NewHandler(
		answer.Identity{ID: cfg.TriviaBot.ID, Username: cfg.TriviaBot.Username},
		parser,
		cfg.Trivia.StripToken,
		trivia.NewClient(cfg.Trivia.APIURL, cfg.Trivia.Count),
		gate,
		logger,
	)
	broker.Subscribe(handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// the bot keeps answering without metrics
		if err := server.Run(gctx); err != nil {
			logger.Error("metrics server stopped", "error", err.Error())
		}
		return nil
	})
	g.Go(func() error { return broker.Run(gctx) })
	g.Go(func() error { return irc.Run(gctx) })
	g.Go(func() error { return operator.Run(gctx, gate) })

	logger.Info("Press Ctrl+C to exit")
	if err := g.Wait(); err != nil {
		logger.Error("shutting down after error", "error", err.Error())
	}
	Shutdown(gate, logger)
}

// Shutdown closes any open prompt and logs a message.
func Shutdown(gate *confirm.Gate, logger *logging.Logger) {
	gate.Close()
	logger.Info("Shutting down")
}
