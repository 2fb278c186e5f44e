package mondo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mondosdk/mondo/decode"
)

const sampleTransaction = `{
	"account_balance": 9937,
	"amount": -63,
	"attachments": [],
	"category": "groceries",
	"created": "2016-01-19T20:08:52.193Z",
	"currency": "GBP",
	"description": "TESCO STORES 5371      ASHTEAD       GBR",
	"id": "tx_000094KDihIfYw1i5BvGOf",
	"is_load": false,
	"local_amount": -63,
	"local_currency": "GBP",
	"merchant": "merch_000094KDihVmm9zgP75onp",
	"metadata": {"notes": "M&Ms"},
	"notes": "M&Ms",
	"settled": "2016-01-20T09:12:34.64Z"
}`

const sampleMerchant = `{
	"id": "merch_000094KDihVmm9zgP75onp",
	"group_id": "grp_000092JYbUJtEgP9xND1Iv",
	"created": "2016-01-19T20:08:52.193Z",
	"name": "Tesco",
	"logo": "https://example.com/tesco.png",
	"emoji": "🛒",
	"category": "groceries",
	"address": {
		"address": "98 Southgate Road",
		"city": "London",
		"country": "GB",
		"latitude": 51.54151,
		"longitude": -0.08482,
		"postcode": "N1 3JD",
		"region": "Greater London"
	}
}`

func TestDecodeTransaction(t *testing.T) {
	t.Parallel()

	tx, err := decode.Unmarshal([]byte(sampleTransaction), decodeTransaction)
	require.NoError(t, err)

	assert.Equal(t, "tx_000094KDihIfYw1i5BvGOf", tx.ID)
	assert.Equal(t, int64(-63), tx.Amount)
	assert.Equal(t, int64(9937), tx.AccountBalance)
	assert.Equal(t, CategoryGroceries, tx.Category)
	assert.False(t, tx.IsLoad)
	assert.Equal(t, "M&Ms", tx.Notes)
	assert.Equal(t, map[string]string{"notes": "M&Ms"}, tx.Metadata)
	assert.Empty(t, tx.Attachments)
	assert.Empty(t, tx.DeclineReason)

	require.NotNil(t, tx.Merchant)
	assert.Equal(t, "merch_000094KDihVmm9zgP75onp", tx.Merchant.ID)
	assert.False(t, tx.Merchant.Expanded())

	require.NotNil(t, tx.Settled)
	assert.Equal(t, time.Date(2016, 1, 20, 9, 12, 34, 640_000_000, time.UTC), tx.Settled.UTC())
}

func TestDecodeTransactionExpandedMerchant(t *testing.T) {
	t.Parallel()

	doc := `{
		"account_balance": 100, "amount": -50, "attachments": [],
		"category": "eating_out", "created": "2016-01-21T13:12:58.28Z",
		"currency": "GBP", "description": "PIZZA", "id": "tx_1",
		"is_load": false, "local_amount": -50, "local_currency": "GBP",
		"merchant": ` + sampleMerchant + `,
		"metadata": {}, "notes": "", "settled": ""
	}`
	tx, err := decode.Unmarshal([]byte(doc), decodeTransaction)
	require.NoError(t, err)

	require.NotNil(t, tx.Merchant)
	require.True(t, tx.Merchant.Expanded())
	assert.Equal(t, "merch_000094KDihVmm9zgP75onp", tx.Merchant.ID)
	assert.Equal(t, "Tesco", tx.Merchant.Merchant.Name)
	assert.Equal(t, "London", tx.Merchant.Merchant.Address.City)
	assert.Equal(t, CategoryGroceries, tx.Merchant.Merchant.Category)
	assert.Equal(t, "example.com", tx.Merchant.Merchant.LogoURL.Host)

	// "" means not settled yet, not a malformed timestamp.
	assert.Nil(t, tx.Settled)
}

func TestDecodeTransactionNullableFields(t *testing.T) {
	t.Parallel()

	doc := `{
		"account_balance": 100, "amount": -409, "attachments": null,
		"category": "groceries", "created": "2016-01-22T14:17:14.05Z",
		"currency": "GBP", "description": "MORRISONS", "id": "tx_2",
		"decline_reason": "OTHER",
		"is_load": false, "local_amount": -409, "local_currency": "GBP",
		"merchant": null, "metadata": {}, "settled": ""
	}`
	tx, err := decode.Unmarshal([]byte(doc), decodeTransaction)
	require.NoError(t, err)

	assert.Nil(t, tx.Merchant)
	assert.Nil(t, tx.Settled)
	assert.Nil(t, tx.Attachments)
	assert.Empty(t, tx.Notes)
	assert.Equal(t, DeclineOther, tx.DeclineReason)
}

func TestDecodeTransactionUnknownCategoryFails(t *testing.T) {
	t.Parallel()

	doc := `{
		"account_balance": 100, "amount": -1, "attachments": [],
		"category": "quantum_groceries", "created": "2016-01-22T14:17:14.05Z",
		"currency": "GBP", "description": "X", "id": "tx_3",
		"is_load": false, "local_amount": -1, "local_currency": "GBP",
		"metadata": {}
	}`
	_, err := decode.Unmarshal([]byte(doc), decodeTransaction)
	var de *decode.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "category", de.Path())
	assert.Equal(t, decode.KindInvalid, de.Leaf().Kind)
	assert.Equal(t, "quantum_groceries", de.Leaf().Raw)
}

func TestDecodeAccount(t *testing.T) {
	t.Parallel()

	doc := `{"id":"acc_1","account_number":"123","description":"d","sort_code":"00","created":"2016-01-01T00:00:00Z"}`
	a, err := decode.Unmarshal([]byte(doc), decodeAccount)
	require.NoError(t, err)
	assert.Equal(t, "acc_1", a.ID)
	assert.Equal(t, "123", a.AccountNumber)
	assert.Equal(t, "00", a.SortCode)
	assert.Equal(t, time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), a.Created.UTC())
}

func TestDecodeAccountMissingFieldPath(t *testing.T) {
	t.Parallel()

	doc := `{"id":"acc_1","description":"d","sort_code":"00","created":"2016-01-01T00:00:00Z"}`
	_, err := decode.Unmarshal([]byte(doc), decodeAccount)
	var de *decode.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "account_number", de.Path())
	assert.Equal(t, decode.KindNull, de.Leaf().Kind)
}

func TestDecodeBalance(t *testing.T) {
	t.Parallel()

	b, err := decode.Unmarshal([]byte(`{"balance":5000,"currency":"GBP","spend_today":-100}`), decodeBalance)
	require.NoError(t, err)
	assert.Equal(t, Balance{Balance: 5000, Currency: "GBP", SpendToday: -100}, b)
}

func TestDecodeFeedItem(t *testing.T) {
	t.Parallel()

	doc := `{
		"id": "feed_1", "type": "transaction", "account_id": "acc_1",
		"created": "2016-01-19T18:44:13.653Z", "updated": "2016-01-19T18:44:13.653Z",
		"external_id": "tx_000094KDihIfYw1i5BvGOf",
		"params": {"title": "Tesco"}, "read": true,
		"transaction": ` + sampleTransaction + `
	}`
	f, err := decode.Unmarshal([]byte(doc), decodeFeedItem)
	require.NoError(t, err)
	assert.Equal(t, FeedItemTypeTransaction, f.Type)
	assert.True(t, f.IsRead)
	assert.Equal(t, map[string]string{"title": "Tesco"}, f.Params)
	require.NotNil(t, f.Transaction)
	assert.Equal(t, "tx_000094KDihIfYw1i5BvGOf", f.Transaction.ID)
}

func TestDecodeFeedItemUnknownTypeIsLenient(t *testing.T) {
	t.Parallel()

	doc := `{
		"id": "feed_2", "type": "peer_to_peer_confetti", "account_id": "acc_1",
		"created": "2016-01-19T18:44:13Z", "updated": "2016-01-19T18:44:13Z",
		"external_id": "x", "read": false
	}`
	f, err := decode.Unmarshal([]byte(doc), decodeFeedItem)
	require.NoError(t, err)
	assert.Equal(t, FeedItemTypeUnknown, f.Type)
	assert.Nil(t, f.Transaction)
	assert.Nil(t, f.Params)
}

func TestDecodeFeedItemNullTypeStillFails(t *testing.T) {
	t.Parallel()

	doc := `{
		"id": "feed_3", "type": null, "account_id": "acc_1",
		"created": "2016-01-19T18:44:13Z", "updated": "2016-01-19T18:44:13Z",
		"external_id": "x", "read": false
	}`
	_, err := decode.Unmarshal([]byte(doc), decodeFeedItem)
	var de *decode.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "type", de.Path())
	assert.Equal(t, decode.KindNull, de.Leaf().Kind)
}

func TestDecodeMerchantBadLogoURL(t *testing.T) {
	t.Parallel()

	doc := `{
		"id": "merch_1", "group_id": "grp_1", "created": "2016-01-19T20:08:52.193Z",
		"name": "X", "logo": "http://bad host/", "emoji": "x", "category": "groceries",
		"address": {"address":"a","city":"c","country":"GB","latitude":0,"longitude":0,"postcode":"p","region":"r"}
	}`
	_, err := decode.Unmarshal([]byte(doc), decodeMerchant)
	var de *decode.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "logo", de.Path())
	assert.Equal(t, decode.KindInvalid, de.Leaf().Kind)
}
