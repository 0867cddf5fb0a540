// Package config resolves the bot settings from a YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Soypete/twitch-trivia-bot/trivia"
)

// Config is the resolved bot configuration.
type Config struct {
	// TriviaBot identifies the account whose messages are answered.
	TriviaBot TriviaBotConfig `yaml:"trivia_bot"`
	Twitch    TwitchConfig    `yaml:"twitch"`
	Trivia    TriviaConfig    `yaml:"trivia"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TriviaBotConfig is the identity of the trivia bot. ID wins over Username.
type TriviaBotConfig struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
}

// TwitchConfig holds the bot's own login and the channel to join.
type TwitchConfig struct {
	Channel    string `yaml:"channel"`
	Username   string `yaml:"username"`
	OAuthToken string `yaml:"oauth_token"`
	// ClientID and ClientSecret run the OAuth flow when no token is set.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectAddr string `yaml:"redirect_addr"`
}

// TriviaConfig configures message parsing and the trivia API.
type TriviaConfig struct {
	Separator          string `yaml:"separator"`
	Terminator         string `yaml:"terminator"`
	QuestionTerminator string `yaml:"question_terminator"`
	StripToken         string `yaml:"strip_token"`
	APIURL             string `yaml:"api_url"`
	Count              int    `yaml:"count"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// MetricsConfig configures the metrics server.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Twitch: TwitchConfig{
			RedirectAddr: "localhost:3000",
		},
		Trivia: TriviaConfig{
			Separator:  trivia.DefaultSeparator,
			Terminator: trivia.DefaultTerminator,
			StripToken: trivia.DefaultStripToken,
			APIURL:     trivia.DefaultBaseURL,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":6060",
		},
	}
}

// Load reads dotenvPath (when present), the YAML file at path (when not
// empty) and the environment.
func Load(path, dotenvPath string) (*Config, error) {
	if err := loadDotenv(dotenvPath); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config YAML")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat dotenv file failed path=%s", path)
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load dotenv file failed path=%s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setFromEnv(&c.TriviaBot.ID, "TTV_ID")
	setFromEnv(&c.TriviaBot.Username, "TTV_USERNAME")

	setFromEnv(&c.Twitch.Channel, "TWITCH_CHANNEL")
	setFromEnv(&c.Twitch.Username, "TWITCH_USERNAME")
	setFromEnv(&c.Twitch.OAuthToken, "TWITCH_OAUTH_TOKEN")
	setFromEnv(&c.Twitch.ClientID, "TWITCH_ID")
	setFromEnv(&c.Twitch.ClientSecret, "TWITCH_SECRET")
	setFromEnv(&c.Twitch.RedirectAddr, "TWITCH_REDIRECT_ADDR")

	setFromEnv(&c.Trivia.Separator, "TRIVIA_SEPARATOR")
	setFromEnv(&c.Trivia.Terminator, "TRIVIA_TERMINATOR")
	setFromEnv(&c.Trivia.QuestionTerminator, "TRIVIA_QUESTION_TERMINATOR")
	setFromEnv(&c.Trivia.StripToken, "TRIVIA_STRIP_TOKEN")
	setFromEnv(&c.Trivia.APIURL, "TRIVIA_API_URL")
	if v := os.Getenv("TRIVIA_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRIVIA_COUNT must be an integer, got %q", v)
		}
		c.Trivia.Count = n
	}

	setFromEnv(&c.Logging.Level, "LOG_LEVEL")
	setFromEnv(&c.Logging.Format, "LOG_FORMAT")
	setFromEnv(&c.Logging.File, "LOG_FILE")
	setFromEnv(&c.Metrics.Addr, "METRICS_ADDR")
	return nil
}

// setFromEnv overwrites dst when key is set to a non-empty value.
func setFromEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

// Validate ensures required fields are present and values are sensible.
// The channel is not required here because it can be asked for at startup.
func (c *Config) Validate() error {
	if c.TriviaBot.ID == "" && c.TriviaBot.Username == "" {
		return fmt.Errorf("trivia bot id (TTV_ID) or username (TTV_USERNAME) is required")
	}
	if c.Twitch.OAuthToken == "" && (c.Twitch.ClientID == "" || c.Twitch.ClientSecret == "") {
		return fmt.Errorf("twitch oauth token (TWITCH_OAUTH_TOKEN) or client id and secret (TWITCH_ID, TWITCH_SECRET) are required")
	}
	if c.Twitch.Username == "" {
		return fmt.Errorf("twitch username (TWITCH_USERNAME) is required")
	}
	if strings.TrimSpace(c.Trivia.Separator) == "" || strings.ContainsAny(c.Trivia.Separator, " \t") {
		return fmt.Errorf("trivia separator must be a single token, got %q", c.Trivia.Separator)
	}
	if strings.ContainsAny(c.Trivia.Terminator, " \t") {
		return fmt.Errorf("trivia terminator must be a single token, got %q", c.Trivia.Terminator)
	}
	if strings.ContainsAny(c.Trivia.QuestionTerminator, " \t") {
		return fmt.Errorf("trivia question terminator must be a single token, got %q", c.Trivia.QuestionTerminator)
	}
	if c.Trivia.Count < 0 {
		return fmt.Errorf("trivia count must be non-negative, got %d", c.Trivia.Count)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

// NormalizedChannel returns the channel name without a leading '#', lowercased.
func (t TwitchConfig) NormalizedChannel() string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t.Channel), "#"))
}
