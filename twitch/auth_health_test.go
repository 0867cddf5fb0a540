package twitchirc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Soypete/twitch-trivia-bot/logging"
)

func TestGetAuthHealth(t *testing.T) {
	tests := []struct {
		name             string
		token            *oauth2.Token
		tokenRefreshTime time.Time
		wantHasToken     bool
		wantIsExpired    bool
	}{
		{
			name:             "valid token not expired",
			token:            &oauth2.Token{AccessToken: "test-token"},
			tokenRefreshTime: time.Now().Add(-6 * time.Hour),
			wantHasToken:     true,
		},
		{
			name:             "token expired",
			token:            &oauth2.Token{AccessToken: "test-token"},
			tokenRefreshTime: time.Now().Add(-13 * time.Hour),
			wantHasToken:     true,
			wantIsExpired:    true,
		},
		{
			name:             "token expiry wins over refresh time",
			token:            &oauth2.Token{AccessToken: "test-token", Expiry: time.Now().Add(-time.Minute)},
			tokenRefreshTime: time.Now(),
			wantHasToken:     true,
			wantIsExpired:    true,
		},
		{
			name:          "no token",
			wantIsExpired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			irc := &IRC{
				tok:              tt.token,
				tokenRefreshTime: tt.tokenRefreshTime,
				logger:           logging.NewLogger(logging.LogLevelError, nil),
			}

			health := irc.GetAuthHealth()
			assert.Equal(t, tt.wantHasToken, health.HasToken)
			assert.Equal(t, tt.wantIsExpired, health.IsExpired)
			assert.False(t, health.Connected)
		})
	}
}

func TestAuthHealthHandler(t *testing.T) {
	irc := &IRC{
		tok:              &oauth2.Token{AccessToken: "valid-token"},
		tokenSource:      tokenSourceConfigured,
		tokenRefreshTime: time.Now(),
		logger:           logging.NewLogger(logging.LogLevelError, nil),
	}
	irc.connected.Store(true)

	w := httptest.NewRecorder()
	irc.AuthHealthHandler()(w, httptest.NewRequest(http.MethodGet, "/healthz/auth", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var health AuthHealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	assert.True(t, health.HasToken)
	assert.True(t, health.Connected)
	assert.Equal(t, tokenSourceConfigured, health.TokenSource)
	assert.Greater(t, health.HoursUntilExpiry, 0.0)
}

func TestAuthHealthHandlerRejectsOtherMethods(t *testing.T) {
	irc := &IRC{logger: logging.NewLogger(logging.LogLevelError, nil)}

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		w := httptest.NewRecorder()
		irc.AuthHealthHandler()(w, httptest.NewRequest(method, "/healthz/auth", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}
}
