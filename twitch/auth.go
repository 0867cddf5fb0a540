package twitchirc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/twitch"
)

const (
	tokenSourceConfigured = "configured"
	tokenSourceOAuth      = "oauth"
)

func (irc *IRC) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     irc.conf.ClientID,
		ClientSecret: irc.conf.ClientSecret,
		Scopes:       []string{"chat:read", "chat:edit"},
		RedirectURL:  "http://" + irc.conf.RedirectAddr + "/oauth/redirect",
		Endpoint:     twitch.Endpoint,
	}
}

func (irc *IRC) parseAuthCode(w http.ResponseWriter, req *http.Request) {
	err := req.ParseForm()
	if err != nil {
		irc.logger.Error("could not parse oauth redirect query", "error", err.Error())
		http.Error(w, "could not parse query", http.StatusBadRequest)
		return
	}
	code := req.FormValue("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	select {
	case irc.authCode <- code:
		_, _ = w.Write([]byte("auth code received, you can close this tab"))
	default:
		http.Error(w, "auth code already received", http.StatusConflict)
	}
}

// AuthTwitch sets the IRC token. A configured token is used as is; otherwise
// the oauth2 authorization code flow runs and waits for the operator to
// approve the app in a browser.
func (irc *IRC) AuthTwitch(ctx context.Context) error {
	if token := strings.TrimSpace(irc.conf.OAuthToken); token != "" {
		irc.tok = &oauth2.Token{AccessToken: strings.TrimPrefix(token, "oauth:")}
		irc.tokenSource = tokenSourceConfigured
		irc.tokenRefreshTime = time.Now()
		return nil
	}

	if irc.conf.ClientID == "" || irc.conf.ClientSecret == "" {
		return errors.New("twitch client id and secret are required for the oauth flow")
	}

	irc.authCode = make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/redirect", irc.parseAuthCode)
	server := &http.Server{
		Addr:              irc.conf.RedirectAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			irc.logger.Error("oauth redirect listener failed", "error", err.Error())
		}
	}()
	defer func() {
		_ = server.Close()
	}()

	conf := irc.oauthConfig()
	// Redirect user to consent page to ask for permission
	// for the scopes specified above.
	url := conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("Visit the URL for the auth dialog: %v\n", url)

	var code string
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for twitch auth code")
	case code = <-irc.authCode:
	}

	irc.logger.Info("auth code received")
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return errors.Wrap(err, "failed to get token with auth code")
	}
	irc.tok = tok
	irc.tokenSource = tokenSourceOAuth
	irc.tokenRefreshTime = time.Now()
	irc.logger.Info("token received")
	return nil
}
