package mondo

import (
	"strconv"
	"sync"
	"time"
)

// tokenValidityMargin is subtracted from the expiry when checking
// validity, so a token is never presented moments before it lapses.
const tokenValidityMargin = time.Minute

// Token is the current session's OAuth2 token. Replaced wholesale on
// refresh, never mutated.
type Token struct {
	CreatedAt    time.Time
	AccessToken  string
	ExpiresIn    int    // seconds
	RefreshToken string // empty when the grant issued none
	UserID       string
}

// ExpiresAt derives the absolute expiry from creation time and TTL.
func (t Token) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Valid reports whether the token can still be presented at now,
// honoring the safety margin: now < ExpiresAt - 60s.
func (t Token) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt().Add(-tokenValidityMargin))
}

// SecretStore is the opaque credential store tokens persist through.
// Get of an absent key reports ok == false rather than an error.
type SecretStore interface {
	Get(key string) (value string, ok bool)
	Set(key, value string) error
	Delete(key string) error
}

// Persisted entry names, namespaced per client id by tokenStore.
const (
	storeKeyCreatedAt    = "created_at"
	storeKeyAccessToken  = "access_token"
	storeKeyRefreshToken = "refresh_token"
	storeKeyExpiresIn    = "expires_in"
)

// tokenStore owns the single current-session token. All reads and
// writes go through its mutex; the request pipeline only ever reads.
type tokenStore struct {
	store  SecretStore
	prefix string

	mu  sync.Mutex
	tok *Token
}

func newTokenStore(store SecretStore, clientID string) *tokenStore {
	return &tokenStore{store: store, prefix: "mondo." + clientID + "."}
}

// current returns the in-memory token, if any.
func (s *tokenStore) current() (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == nil {
		return Token{}, false
	}
	return *s.tok, true
}

// set replaces the session token and persists it. The in-memory copy is
// updated even if persistence fails; the caller decides how loudly to
// report the save error.
func (s *tokenStore) set(tok Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := tok
	s.tok = &cp
	return s.save(tok)
}

// load reconstructs the persisted token. Any missing or malformed
// required field yields absent, never an error.
func (s *tokenStore) load() bool {
	createdRaw, ok := s.store.Get(s.prefix + storeKeyCreatedAt)
	if !ok {
		return false
	}
	access, ok := s.store.Get(s.prefix + storeKeyAccessToken)
	if !ok || access == "" {
		return false
	}
	expiresRaw, ok := s.store.Get(s.prefix + storeKeyExpiresIn)
	if !ok {
		return false
	}
	created, err := time.Parse(time.RFC3339, createdRaw)
	if err != nil {
		return false
	}
	expires, err := strconv.Atoi(expiresRaw)
	if err != nil {
		return false
	}
	refresh, _ := s.store.Get(s.prefix + storeKeyRefreshToken)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = &Token{
		CreatedAt:    created,
		AccessToken:  access,
		ExpiresIn:    expires,
		RefreshToken: refresh,
	}
	return true
}

func (s *tokenStore) save(tok Token) error {
	// Sequential key writes; the store is process-local so this is
	// atomic from the caller's point of view.
	if err := s.store.Set(s.prefix+storeKeyCreatedAt, tok.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := s.store.Set(s.prefix+storeKeyAccessToken, tok.AccessToken); err != nil {
		return err
	}
	if err := s.store.Set(s.prefix+storeKeyExpiresIn, strconv.Itoa(tok.ExpiresIn)); err != nil {
		return err
	}
	if tok.RefreshToken == "" {
		return s.store.Delete(s.prefix + storeKeyRefreshToken)
	}
	return s.store.Set(s.prefix+storeKeyRefreshToken, tok.RefreshToken)
}

// clear drops the session token from memory and the store (sign-out).
func (s *tokenStore) clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = nil
	for _, key := range []string{storeKeyCreatedAt, storeKeyAccessToken, storeKeyRefreshToken, storeKeyExpiresIn} {
		if err := s.store.Delete(s.prefix + key); err != nil {
			return err
		}
	}
	return nil
}
