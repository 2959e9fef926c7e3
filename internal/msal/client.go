// Package msal drives the Microsoft identity authorization-code flow: it
// builds consent URLs, exchanges authorization codes for tokens, and revokes
// refresh tokens on logout.
package msal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// Config enumerates the app registration values the client needs.
type Config struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	RedirectURI  string
	Scopes       []string
	// LoginBaseURL overrides the Microsoft login endpoint, mainly for tests.
	LoginBaseURL string
}

// TokenSet is the outcome of a successful code exchange.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// ExchangeError means the provider rejected the code exchange.
type ExchangeError struct {
	Code        string
	Description string
}

func (e *ExchangeError) Error() string {
	if e.Description != "" {
		return "msal: code exchange rejected: " + e.Description
	}
	return "msal: code exchange rejected: " + e.Code
}

// Client is the identity-provider collaborator. It is stateless; one client
// serves all requests.
type Client struct {
	oauth      oauth2.Config
	loginBase  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an identity client for the configured tenant.
func NewClient(log *slog.Logger, cfg Config) *Client {
	if log == nil {
		log = slog.Default()
	}
	loginBase := strings.TrimRight(cfg.LoginBaseURL, "/")
	if loginBase == "" {
		loginBase = "https://login.microsoftonline.com"
	}
	endpoint := microsoft.AzureADEndpoint(cfg.TenantID)
	if cfg.LoginBaseURL != "" {
		tenant := cfg.TenantID
		if tenant == "" {
			tenant = "common"
		}
		endpoint = oauth2.Endpoint{
			AuthURL:  loginBase + "/" + tenant + "/oauth2/v2.0/authorize",
			TokenURL: loginBase + "/" + tenant + "/oauth2/v2.0/token",
		}
	}
	return &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		loginBase:  loginBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.With(slog.String("client", "msal")),
	}
}

// AuthCodeURL builds the consent URL the login endpoint redirects to. Each
// login gets its own state value.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for tokens. Provider rejections
// surface as *ExchangeError.
func (c *Client) ExchangeCode(ctx context.Context, code string) (TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return TokenSet{}, &ExchangeError{
				Code:        retrieveErr.ErrorCode,
				Description: retrieveErr.ErrorDescription,
			}
		}
		return TokenSet{}, fmt.Errorf("exchange code: %w", err)
	}
	return TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, nil
}

// RevokeRefreshToken asks the provider to revoke a refresh token. The app
// credentials arrive from the caller because the frontend owns which
// registration issued the token.
func (c *Client) RevokeRefreshToken(ctx context.Context, refreshToken, clientID, clientSecret string) error {
	form := url.Values{
		"token":           {refreshToken},
		"client_id":       {clientID},
		"client_secret":   {clientSecret},
		"token_type_hint": {"refresh_token"},
	}
	logoutURL := c.loginBase + "/common/oauth2/v2.0/logout"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, logoutURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create revocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revoke refresh token: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
