package twitchirc

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// AuthHealthResponse represents the JSON response for the auth health check endpoint
type AuthHealthResponse struct {
	HasToken         bool      `json:"has_token"`
	TokenSource      string    `json:"token_source,omitempty"`
	Connected        bool      `json:"connected"`
	LastRefreshTime  time.Time `json:"last_refresh_time"`
	ExpirationTime   time.Time `json:"expiration_time"`
	IsExpired        bool      `json:"is_expired"`
	HoursUntilExpiry float64   `json:"hours_until_expiry"`
}

// tokenExpiryDuration is assumed when the token carries no expiry of its own.
const tokenExpiryDuration = 12 * time.Hour

// GetAuthHealth returns the current auth token health status
func (irc *IRC) GetAuthHealth() AuthHealthResponse {
	hasToken := irc.tok != nil && irc.tok.AccessToken != ""

	expirationTime := irc.tokenRefreshTime.Add(tokenExpiryDuration)
	if hasToken && !irc.tok.Expiry.IsZero() {
		expirationTime = irc.tok.Expiry
	}

	return AuthHealthResponse{
		HasToken:         hasToken,
		TokenSource:      irc.tokenSource,
		Connected:        irc.Connected(),
		LastRefreshTime:  irc.tokenRefreshTime,
		ExpirationTime:   expirationTime,
		IsExpired:        time.Now().After(expirationTime),
		HoursUntilExpiry: time.Until(expirationTime).Hours(),
	}
}

// AuthHealthHandler returns an HTTP handler for the auth health check endpoint
func (irc *IRC) AuthHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(irc.GetAuthHealth()); err != nil {
			irc.logger.Error("failed to encode auth health response", "error", err.Error())
		}
	}
}
