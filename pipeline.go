package mondo

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mondosdk/mondo/decode"
)

// do executes one API request. On 200 it parses the body into a
// decode.Value for the caller's decoder; any other status is classified
// into an *APIError. A context cancelled before or during the call
// returns ctx.Err() and delivers nothing else.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, requiresAuth bool) (decode.Value, error) {
	var bearer string
	if requiresAuth {
		tok, err := c.ensureToken(ctx)
		if err != nil {
			return decode.Value{}, err
		}
		bearer = tok.AccessToken
	}

	req, err := c.newRequest(ctx, method, path, params)
	if err != nil {
		return decode.Value{}, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// Cancellation wins over the transport's report of it.
		if ctx.Err() != nil {
			return decode.Value{}, ctx.Err()
		}
		c.observe(method, path, 0, time.Since(start))
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return decode.Value{}, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return decode.Value{}, ctx.Err()
		}
		return decode.Value{}, transportError(err)
	}
	c.observe(method, path, resp.StatusCode, time.Since(start))
	c.log.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode != http.StatusOK {
		return decode.Value{}, classifyAPIError(resp.StatusCode, body)
	}
	return decode.Parse(body)
}

// newRequest builds the HTTP request. GET-style methods carry params in
// the query string; everything else sends a form-encoded body.
func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values) (*http.Request, error) {
	target := c.cfg.BaseURL + path
	var body io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete:
		if len(params) > 0 {
			target += "?" + params.Encode()
		}
	default:
		body = strings.NewReader(params.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

// ensureToken returns a token valid right now, refreshing if the stored
// one has lapsed. Concurrent callers that both observe an expired token
// share a single refresh exchange via singleflight.
func (c *Client) ensureToken(ctx context.Context) (Token, error) {
	tok, ok := c.tokens.current()
	if !ok {
		return Token{}, ErrAuthenticationRequired
	}
	if tok.Valid(time.Now()) {
		return tok, nil
	}
	if tok.RefreshToken == "" {
		// Expired with no refresh token: the caller must log in again.
		return Token{}, ErrAuthenticationRequired
	}

	v, err, shared := c.refresh.Do("refresh", func() (any, error) {
		// A waiter that lost the race may find the token already fresh.
		if t, ok := c.tokens.current(); ok && t.Valid(time.Now()) {
			return t, nil
		}
		c.log.Info("access token expired, refreshing")
		return c.exchangeToken(ctx, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {tok.RefreshToken},
		})
	})
	if err != nil {
		return Token{}, err
	}
	if shared {
		c.log.Debug("joined in-flight token refresh")
	}
	return v.(Token), nil
}

func (c *Client) observe(method, path string, status int, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.observe(method, path, status, elapsed)
	}
}
