// Package helix looks up Twitch accounts through the Helix API.
package helix

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/Soypete/twitch-trivia-bot/logging"
)

// DefaultBaseURL is the Helix API root.
const DefaultBaseURL = "https://api.twitch.tv/helix"

// Client is a Twitch Helix API client.
type Client struct {
	BaseURL     string
	httpClient  *http.Client
	clientID    string
	accessToken string
	logger      *logging.Logger
}

// User is one entry of the users endpoint.
type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// UserResponse is the users endpoint payload.
type UserResponse struct {
	Data []User `json:"data"`
}

// NewClient creates a new Twitch Helix API client
func NewClient(clientID, accessToken string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		BaseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		clientID:    clientID,
		accessToken: strings.TrimPrefix(accessToken, "oauth:"),
		logger:      logger,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	fullURL := c.BaseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Client-Id", c.clientID)

	c.logger.Debug("making Twitch API request", "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// GetUsers returns the accounts for the given logins.
func (c *Client) GetUsers(ctx context.Context, logins []string) ([]User, error) {
	query := url.Values{}
	for _, login := range logins {
		query.Add("login", strings.ToLower(login))
	}

	respBody, err := c.get(ctx, "/users", query)
	if err != nil {
		return nil, err
	}

	var resp UserResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to parse user response")
	}
	return resp.Data, nil
}

// GetUserIDByLogin returns the numeric id of login.
func (c *Client) GetUserIDByLogin(ctx context.Context, login string) (string, error) {
	users, err := c.GetUsers(ctx, []string{login})
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", fmt.Errorf("user not found: %s", login)
	}
	return users[0].ID, nil
}
