package mondo

import (
	"errors"
	"time"

	"github.com/mondosdk/mondo/decode"
)

// FeedItemType is the kind of entry in an account's feed. The set is
// server-defined and open, so decoding is lenient: an unrecognized type
// degrades to FeedItemTypeUnknown instead of failing the record.
type FeedItemType string

const (
	FeedItemTypeTransaction      FeedItemType = "transaction"
	FeedItemTypeBasic            FeedItemType = "basic"
	FeedItemTypeOnboardingSearch FeedItemType = "onboarding_search"
	FeedItemTypeOnboardingGraph  FeedItemType = "onboarding_graph"
	FeedItemTypeUnknown          FeedItemType = "unknown"
)

var feedItemTypes = map[string]FeedItemType{
	"transaction":       FeedItemTypeTransaction,
	"basic":             FeedItemTypeBasic,
	"onboarding_search": FeedItemTypeOnboardingSearch,
	"onboarding_graph":  FeedItemTypeOnboardingGraph,
}

func decodeFeedItemType(v decode.Value) (FeedItemType, error) {
	t, err := decode.Enum(v, feedItemTypes)
	if err != nil {
		var de *decode.Error
		if errors.As(err, &de) && de.Kind == decode.KindInvalid {
			return FeedItemTypeUnknown, nil
		}
		return "", err
	}
	return t, nil
}

// FeedItem is one entry in the account activity feed.
type FeedItem struct {
	ID          string
	Type        FeedItemType
	AccountID   string
	Created     time.Time
	Updated     time.Time
	ExternalID  string
	Params      map[string]string // nil when absent
	IsRead      bool
	Transaction *Transaction // present for transaction-typed items
}

func decodeFeedItem(v decode.Value) (FeedItem, error) {
	var f FeedItem
	var err error
	if f.ID, err = decode.Field(v, "id", decode.String); err != nil {
		return FeedItem{}, err
	}
	if f.Type, err = decode.Field(v, "type", decodeFeedItemType); err != nil {
		return FeedItem{}, err
	}
	if f.AccountID, err = decode.Field(v, "account_id", decode.String); err != nil {
		return FeedItem{}, err
	}
	if f.Created, err = decode.Field(v, "created", decode.Time); err != nil {
		return FeedItem{}, err
	}
	if f.Updated, err = decode.Field(v, "updated", decode.Time); err != nil {
		return FeedItem{}, err
	}
	if f.ExternalID, err = decode.Field(v, "external_id", decode.String); err != nil {
		return FeedItem{}, err
	}
	params, err := decode.Optional(v, "params", decode.StringMap)
	if err != nil {
		return FeedItem{}, err
	}
	if params != nil {
		f.Params = *params
	}
	if f.IsRead, err = decode.Field(v, "read", decode.Bool); err != nil {
		return FeedItem{}, err
	}
	if f.Transaction, err = decode.Optional(v, "transaction", decodeTransaction); err != nil {
		return FeedItem{}, err
	}
	return f, nil
}
