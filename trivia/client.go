package trivia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/Soypete/twitch-trivia-bot/types"
)

// DefaultBaseURL is the Gazatu trivia API.
const DefaultBaseURL = "https://api.gazatu.xyz"

const questionsPath = "/trivia/questions"

// Client queries the trivia API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Count is sent as the count parameter when positive.
	Count int
}

// NewClient returns a Client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, count int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Count: count,
	}
}

// QuestionsURL builds the lookup URL for the given categories.
func (c *Client) QuestionsURL(categories ...string) (string, error) {
	u, err := url.Parse(c.BaseURL + questionsPath)
	if err != nil {
		return "", errors.Wrap(err, "invalid base URL")
	}

	params := url.Values{}
	params.Set("include", "["+strings.Join(categories, ",")+"]")
	if c.Count > 0 {
		params.Set("count", strconv.Itoa(c.Count))
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// Questions fetches every trivia record in the given categories.
func (c *Client) Questions(ctx context.Context, categories ...string) ([]types.TriviaRecord, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}

	lookupURL, err := c.QuestionsURL(categories...)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", "twitch-trivia-bot/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to make request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	var records []types.TriviaRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}

	return records, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}
