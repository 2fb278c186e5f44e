package mondo

import (
	"context"
	"net/url"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/mondosdk/mondo/decode"
)

// AuthState is the authorization lifecycle position, computed lazily
// from the current token rather than kept by a background timer.
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAuthorizing
	StateAuthenticated
	StateExpired
)

func (s AuthState) String() string {
	switch s {
	case StateAuthorizing:
		return "authorizing"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	}
	return "unauthenticated"
}

// AuthState reports where the session currently stands.
func (c *Client) AuthState() AuthState {
	c.stateMu.Lock()
	authorizing := c.authorizing
	c.stateMu.Unlock()
	if authorizing {
		return StateAuthorizing
	}
	tok, ok := c.tokens.current()
	switch {
	case !ok:
		return StateUnauthenticated
	case tok.Valid(time.Now()):
		return StateAuthenticated
	}
	return StateExpired
}

// Authenticated reports whether an authenticated call would go out
// without a fresh login (a valid token, or an expired one that can be
// refreshed).
func (c *Client) Authenticated() bool {
	tok, ok := c.tokens.current()
	return ok && (tok.Valid(time.Now()) || tok.RefreshToken != "")
}

// LoginWithPassword runs the resource-owner password grant.
func (c *Client) LoginWithPassword(ctx context.Context, username, password string) error {
	_, err := c.exchangeToken(ctx, url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	})
	return err
}

// Auth is one authorization-code login attempt. Each attempt carries
// its own random state value, which must round-trip through the
// identity provider's redirect before the code is exchanged.
type Auth struct {
	client *Client
	state  string
}

// BeginAuth starts an authorization-code login attempt.
func (c *Client) BeginAuth() (*Auth, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c.setAuthorizing(true)
	return &Auth{client: c, state: id.String()}, nil
}

// URL is the provider authorize URL to open for the user.
func (a *Auth) URL() string {
	q := url.Values{
		"client_id":     {a.client.cfg.ClientID},
		"redirect_uri":  {a.client.cfg.RedirectURI},
		"response_type": {"code"},
		"state":         {a.state},
	}
	return a.client.cfg.AuthURL + "?" + q.Encode()
}

// HandleRedirect consumes the provider's redirect URL. The state must
// match this attempt and a code must be present; otherwise the login
// fails locally with no network call.
func (a *Auth) HandleRedirect(ctx context.Context, redirect string) error {
	u, err := url.Parse(redirect)
	if err != nil {
		a.client.setAuthorizing(false)
		return ErrMissingAuthCode
	}
	q := u.Query()
	if q.Get("state") != a.state {
		a.client.setAuthorizing(false)
		return ErrStateMismatch
	}
	code := q.Get("code")
	if code == "" {
		a.client.setAuthorizing(false)
		return ErrMissingAuthCode
	}
	_, err = a.client.exchangeToken(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {a.client.cfg.RedirectURI},
	})
	return err
}

// SignOut clears the session token from memory and the secret store.
func (c *Client) SignOut() error {
	c.log.Info("signing out")
	return c.tokens.clear()
}

// exchangeToken posts to the token endpoint with client credentials
// added, decodes the token response, and installs + persists the new
// token. Any failure leaves the session unauthenticated-or-expired as
// it was.
func (c *Client) exchangeToken(ctx context.Context, form url.Values) (Token, error) {
	c.setAuthorizing(true)
	defer c.setAuthorizing(false)

	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	v, err := c.do(ctx, "POST", "/oauth2/token", form, false)
	if err != nil {
		c.log.Warn("token exchange failed", zap.String("grant_type", form.Get("grant_type")), zap.Error(err))
		return Token{}, err
	}
	tok, err := decodeTokenResponse(v)
	if err != nil {
		return Token{}, err
	}
	if err := c.tokens.set(tok); err != nil {
		// The session works; only persistence is degraded.
		c.log.Warn("failed to persist token", zap.Error(err))
	}
	c.log.Info("token exchange succeeded",
		zap.String("grant_type", form.Get("grant_type")),
		zap.Time("expires_at", tok.ExpiresAt()),
	)
	return tok, nil
}

// decodeTokenResponse requires access_token, expires_in and user_id;
// refresh_token is present only for grants that issue one.
func decodeTokenResponse(v decode.Value) (Token, error) {
	tok := Token{CreatedAt: time.Now()}
	var err error
	if tok.AccessToken, err = decode.Field(v, "access_token", decode.String); err != nil {
		return Token{}, err
	}
	if tok.ExpiresIn, err = decode.Field(v, "expires_in", decode.Int); err != nil {
		return Token{}, err
	}
	if tok.UserID, err = decode.Field(v, "user_id", decode.String); err != nil {
		return Token{}, err
	}
	refresh, err := decode.Optional(v, "refresh_token", decode.String)
	if err != nil {
		return Token{}, err
	}
	if refresh != nil {
		tok.RefreshToken = *refresh
	}
	return tok, nil
}

func (c *Client) setAuthorizing(on bool) {
	c.stateMu.Lock()
	c.authorizing = on
	c.stateMu.Unlock()
}
