package mondo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mondosdk/mondo/secstore"
)

func TestResourceLabel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"/accounts":            "accounts",
		"/balance":             "balance",
		"/transactions/tx_123": "transactions",
		"/oauth2/token":        "oauth2",
		"":                     "",
	}
	for path, want := range cases {
		if got := resourceLabel(path); got != want {
			t.Errorf("resourceLabel(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestRequestsCounted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(accountsBody))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	store := secstore.NewMem()
	seedToken(t, store, freshToken())
	c := newTestClient(t, srv, store, WithMetrics(reg))

	if _, err := c.ListAccounts(context.Background()); err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if _, err := c.ListAccounts(context.Background()); err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}

	got := testutil.ToFloat64(c.metrics.requests.WithLabelValues("GET", "accounts", "200"))
	if got != 2 {
		t.Fatalf("requests counter = %v, want 2", got)
	}
}
