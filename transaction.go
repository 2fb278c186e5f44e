package mondo

import (
	"time"

	"github.com/mondosdk/mondo/decode"
)

// DeclineReason explains a declined transaction. The server owns this
// set; values outside the known constants pass through as-is.
type DeclineReason string

const (
	DeclineInsufficientFunds DeclineReason = "INSUFFICIENT_FUNDS"
	DeclineCardInactive      DeclineReason = "CARD_INACTIVE"
	DeclineCardBlocked       DeclineReason = "CARD_BLOCKED"
	DeclineOther             DeclineReason = "OTHER"
)

// ExpandedMerchant is the two-state merchant reference: the API returns
// either a bare merchant id, or the embedded object when the caller
// asked for expansion.
type ExpandedMerchant struct {
	ID       string
	Merchant *Merchant // nil unless expanded
}

// Expanded reports whether the full merchant object is present.
func (m ExpandedMerchant) Expanded() bool { return m.Merchant != nil }

func decodeExpandedMerchant(v decode.Value) (ExpandedMerchant, error) {
	if id, err := decode.String(v); err == nil {
		return ExpandedMerchant{ID: id}, nil
	}
	m, err := decodeMerchant(v)
	if err != nil {
		return ExpandedMerchant{}, err
	}
	return ExpandedMerchant{ID: m.ID, Merchant: &m}, nil
}

// Transaction is a single ledger entry. Amounts are integer minor
// units; negative for spending.
type Transaction struct {
	ID             string
	AccountBalance int64
	Amount         int64
	Currency       string
	Description    string
	DeclineReason  DeclineReason // empty when the transaction was not declined
	Category       Category
	Created        time.Time
	IsLoad         bool
	LocalCurrency  string
	LocalAmount    int64
	Merchant       *ExpandedMerchant
	Settled        *time.Time
	Notes          string
	Attachments    []Attachment
	Metadata       map[string]string
}

func decodeTransaction(v decode.Value) (Transaction, error) {
	var t Transaction
	var err error
	if t.ID, err = decode.Field(v, "id", decode.String); err != nil {
		return Transaction{}, err
	}
	if t.AccountBalance, err = decode.Field(v, "account_balance", decode.Int64); err != nil {
		return Transaction{}, err
	}
	if t.Amount, err = decode.Field(v, "amount", decode.Int64); err != nil {
		return Transaction{}, err
	}
	if t.Currency, err = decode.Field(v, "currency", decode.String); err != nil {
		return Transaction{}, err
	}
	if t.Description, err = decode.Field(v, "description", decode.String); err != nil {
		return Transaction{}, err
	}
	reason, err := decode.Optional(v, "decline_reason", decode.String)
	if err != nil {
		return Transaction{}, err
	}
	if reason != nil {
		t.DeclineReason = DeclineReason(*reason)
	}
	if t.Category, err = decode.Field(v, "category", decodeCategory); err != nil {
		return Transaction{}, err
	}
	if t.Created, err = decode.Field(v, "created", decode.Time); err != nil {
		return Transaction{}, err
	}
	if t.IsLoad, err = decode.Field(v, "is_load", decode.Bool); err != nil {
		return Transaction{}, err
	}
	if t.LocalCurrency, err = decode.Field(v, "local_currency", decode.String); err != nil {
		return Transaction{}, err
	}
	if t.LocalAmount, err = decode.Field(v, "local_amount", decode.Int64); err != nil {
		return Transaction{}, err
	}
	if t.Merchant, err = decode.Optional(v, "merchant", decodeExpandedMerchant); err != nil {
		return Transaction{}, err
	}
	if t.Settled, err = optionalTimestamp(v, "settled"); err != nil {
		return Transaction{}, err
	}
	notes, err := decode.Optional(v, "notes", decode.String)
	if err != nil {
		return Transaction{}, err
	}
	if notes != nil {
		t.Notes = *notes
	}
	if t.Attachments, err = decode.OptionalSlice(v, "attachments", decodeAttachment); err != nil {
		return Transaction{}, err
	}
	if t.Metadata, err = decode.Field(v, "metadata", decode.StringMap); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// optionalTimestamp decodes an optional timestamp field. The wire
// format emits "" for timestamps that are not set yet (an unsettled
// transaction's settled field), so empty string counts as absent.
func optionalTimestamp(v decode.Value, key string) (*time.Time, error) {
	s, err := decode.Optional(v, key, decode.String)
	if err != nil {
		return nil, err
	}
	if s == nil || *s == "" {
		return nil, nil
	}
	t, perr := decode.ParseTime(*s)
	if perr != nil {
		return nil, decode.WrapKey(key, &decode.Error{Kind: decode.KindInvalid, Raw: *s})
	}
	return &t, nil
}
