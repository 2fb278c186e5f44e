package mondo

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mondosdk/mondo/decode"
)

// ListAccounts returns the accounts the session's user owns.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	v, err := c.do(ctx, http.MethodGet, "/accounts", nil, true)
	if err != nil {
		return nil, err
	}
	return decode.FieldSlice(v, "accounts", decodeAccount)
}

// GetBalance returns the current balance of the account.
func (c *Client) GetBalance(ctx context.Context, accountID string) (Balance, error) {
	v, err := c.do(ctx, http.MethodGet, "/balance", url.Values{"account_id": {accountID}}, true)
	if err != nil {
		return Balance{}, err
	}
	return decodeBalance(v)
}

// ExpandMerchant asks the API to embed merchant objects instead of
// returning bare ids.
const ExpandMerchant = "merchant"

// TransactionsOptions controls expansion and cursor pagination for
// ListTransactions. The zero value lists everything unexpanded.
type TransactionsOptions struct {
	Expand []string
	Limit  int
	Since  string // opaque cursor: a transaction id or an RFC 3339 timestamp
	Before time.Time
}

func (o *TransactionsOptions) apply(params url.Values) {
	if o == nil {
		return
	}
	for _, e := range o.Expand {
		params.Add("expand[]", e)
	}
	if o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Since != "" {
		params.Set("since", o.Since)
	}
	if !o.Before.IsZero() {
		params.Set("before", o.Before.UTC().Format(time.RFC3339))
	}
}

// ListTransactions returns the account's transactions, newest page
// first per the API's cursor rules.
func (c *Client) ListTransactions(ctx context.Context, accountID string, opts *TransactionsOptions) ([]Transaction, error) {
	params := url.Values{"account_id": {accountID}}
	opts.apply(params)
	v, err := c.do(ctx, http.MethodGet, "/transactions", params, true)
	if err != nil {
		return nil, err
	}
	return decode.FieldSlice(v, "transactions", decodeTransaction)
}

// GetTransaction fetches a single transaction by id.
func (c *Client) GetTransaction(ctx context.Context, transactionID string, expand ...string) (Transaction, error) {
	params := url.Values{}
	for _, e := range expand {
		params.Add("expand[]", e)
	}
	v, err := c.do(ctx, http.MethodGet, "/transactions/"+transactionID, params, true)
	if err != nil {
		return Transaction{}, err
	}
	return decode.Field(v, "transaction", decodeTransaction)
}

// AnnotateTransaction attaches a metadata key/value to the transaction
// and returns the updated record. An empty key is a no-op: the original
// transaction comes back unchanged and nothing goes over the wire.
func (c *Client) AnnotateTransaction(ctx context.Context, tx Transaction, key, value string) (Transaction, error) {
	if key == "" {
		return tx, nil
	}
	params := url.Values{"metadata[" + key + "]": {value}}
	v, err := c.do(ctx, http.MethodPatch, "/transactions/"+tx.ID, params, true)
	if err != nil {
		return Transaction{}, err
	}
	return decode.Field(v, "transaction", decodeTransaction)
}

// ListFeed returns the account's activity feed.
func (c *Client) ListFeed(ctx context.Context, accountID string) ([]FeedItem, error) {
	v, err := c.do(ctx, http.MethodGet, "/feed", url.Values{"account_id": {accountID}}, true)
	if err != nil {
		return nil, err
	}
	return decode.FieldSlice(v, "items", decodeFeedItem)
}
