// Package mondo is a typed client for the Mondo banking REST API:
// OAuth2 login with token persistence, an authenticated request
// pipeline, and typed operations over accounts, balances, transactions
// and the activity feed.
package mondo

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mondosdk/mondo/secstore"
)

// Default endpoints. Overridable through Config for testing.
const (
	defaultBaseURL = "https://api.getmondo.co.uk"
	defaultAuthURL = "https://auth.getmondo.co.uk"
)

// Doer is the opaque HTTP transport boundary: send a request, get a
// status and body back. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config identifies the OAuth2 client and its endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string // custom-scheme URL the provider redirects to
	BaseURL      string // API root, default https://api.getmondo.co.uk
	AuthURL      string // authorize endpoint, default https://auth.getmondo.co.uk
}

// Client is an authenticated Mondo API client for a single user
// session. Construct with New; the zero value is not usable.
//
// Methods are safe for concurrent use. Token mutation is serialized
// through the token store's mutex, and concurrent refreshes coalesce
// into one exchange whose outcome all waiters share.
type Client struct {
	cfg     Config
	http    Doer
	log     *zap.Logger
	metrics *pipelineMetrics

	tokens  *tokenStore
	refresh singleflight.Group

	stateMu     sync.Mutex
	authorizing bool
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the transport, e.g. to add the circuit
// breaker wrapper or a recording fake.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithSecretStore sets the store tokens persist through. Default is an
// in-memory store, which means the session dies with the process.
func WithSecretStore(s SecretStore) Option {
	return func(c *Client) { c.tokens = newTokenStore(s, c.cfg.ClientID) }
}

// WithMetrics registers request counters and latency histograms with
// reg. Without this option the pipeline records nothing.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newPipelineMetrics(reg) }
}

// New builds a Client and restores any persisted session token from
// the secret store.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("mondo: client id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = newTokenStore(secstore.NewMem(), cfg.ClientID)
	}
	if c.tokens.load() {
		c.log.Info("restored persisted session token")
	}
	return c, nil
}
