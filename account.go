package mondo

import (
	"time"

	"github.com/mondosdk/mondo/decode"
)

// Account is a bank account the authenticated user owns.
type Account struct {
	ID            string
	AccountNumber string
	Created       time.Time
	Description   string
	SortCode      string
}

func decodeAccount(v decode.Value) (Account, error) {
	var a Account
	var err error
	if a.ID, err = decode.Field(v, "id", decode.String); err != nil {
		return Account{}, err
	}
	if a.AccountNumber, err = decode.Field(v, "account_number", decode.String); err != nil {
		return Account{}, err
	}
	if a.Created, err = decode.Field(v, "created", decode.Time); err != nil {
		return Account{}, err
	}
	if a.Description, err = decode.Field(v, "description", decode.String); err != nil {
		return Account{}, err
	}
	if a.SortCode, err = decode.Field(v, "sort_code", decode.String); err != nil {
		return Account{}, err
	}
	return a, nil
}

// Balance is an account's current position. Amounts are integer minor
// units (pence for GBP).
type Balance struct {
	Balance    int64
	Currency   string
	SpendToday int64
}

func decodeBalance(v decode.Value) (Balance, error) {
	var b Balance
	var err error
	if b.Balance, err = decode.Field(v, "balance", decode.Int64); err != nil {
		return Balance{}, err
	}
	if b.Currency, err = decode.Field(v, "currency", decode.String); err != nil {
		return Balance{}, err
	}
	if b.SpendToday, err = decode.Field(v, "spend_today", decode.Int64); err != nil {
		return Balance{}, err
	}
	return b, nil
}
