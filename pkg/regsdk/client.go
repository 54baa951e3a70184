package regsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the public endpoints of the registration service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns a session for it. The account
// stays unverified until the emailed link is followed.
func (c *Client) Register(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/v1/auth/register", http.StatusCreated, CredentialsRequest{Email: email, Password: password})
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/v1/auth/login", http.StatusOK, CredentialsRequest{Email: email, Password: password})
}

// CompleteWalkIn sets the password of a walk-in account from its emailed
// token. Log in afterwards to get a session.
func (c *Client) CompleteWalkIn(ctx context.Context, token, password string) (*User, error) {
	return c.postUser(ctx, "/v1/auth/walkin", ResetPasswordRequest{Token: token, Password: password})
}

// NewSession wraps an auth token obtained elsewhere.
func (c *Client) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

func (c *Client) authenticate(ctx context.Context, path string, expected int, body any) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}

	var sr SessionResponse
	if err := decodeJSON(resp, &sr, expected); err != nil {
		return nil, err
	}
	return &Session{client: c, token: sr.Token, user: sr.User}, nil
}

// VerifyEmail marks the account named by an emailed verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*User, error) {
	return c.postUser(ctx, "/v1/auth/verify/"+url.PathEscape(token), nil)
}

func (c *Client) postUser(ctx context.Context, path string, body any) (*User, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// SendPasswordReset emails a reset link. Unknown addresses are not reported.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/reset/send", "", EmailRequest{Email: email})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ResetPassword sets a new password using an emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/reset", "", ResetPasswordRequest{Token: token, Password: password})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// LinkDiscord attaches a Discord account to the user who issued token and
// checks them in.
func (c *Client) LinkDiscord(ctx context.Context, token, discordID string) (*User, error) {
	return c.postUser(ctx, "/v1/discord/link", DiscordLinkRequest{Token: token, DiscordID: discordID})
}

// GetSettings returns the public event settings.
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/v1/settings", "", nil)
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := decodeJSON(resp, &s, http.StatusOK); err != nil {
		return nil, err
	}
	return &s, nil
}
