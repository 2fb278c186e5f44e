package mondo

import (
	"errors"
	"net/http"
	"testing"

	"github.com/sony/gobreaker"
)

type failingDoer struct {
	calls int
	err   error
}

func (d *failingDoer) Do(*http.Request) (*http.Response, error) {
	d.calls++
	return nil, d.err
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	inner := &failingDoer{err: errors.New("connection refused")}
	b := NewBreakerDoer(inner, nil)

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/accounts", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := b.Do(req); err == nil {
			t.Fatalf("call %d: want error", i)
		}
	}
	if inner.calls != 5 {
		t.Fatalf("inner transport called %d times, want 5", inner.calls)
	}

	// Breaker is now open: the next call fails fast without reaching
	// the transport.
	_, err = b.Do(req)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want ErrOpenState", err)
	}
	if inner.calls != 5 {
		t.Fatalf("open breaker still reached the transport (%d calls)", inner.calls)
	}
}
