package mondo

import (
	"net/url"
	"time"

	"github.com/mondosdk/mondo/decode"
)

// Category is the server-defined spending category. Decoding is strict:
// a category string with no matching member fails the whole record.
type Category string

const (
	CategoryMondo         Category = "mondo"
	CategoryGeneral       Category = "general"
	CategoryEatingOut     Category = "eating_out"
	CategoryExpenses      Category = "expenses"
	CategoryTransport     Category = "transport"
	CategoryCash          Category = "cash"
	CategoryBills         Category = "bills"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryHolidays      Category = "holidays"
	CategoryGroceries     Category = "groceries"
)

var categories = map[string]Category{
	"mondo":         CategoryMondo,
	"general":       CategoryGeneral,
	"eating_out":    CategoryEatingOut,
	"expenses":      CategoryExpenses,
	"transport":     CategoryTransport,
	"cash":          CategoryCash,
	"bills":         CategoryBills,
	"entertainment": CategoryEntertainment,
	"shopping":      CategoryShopping,
	"holidays":      CategoryHolidays,
	"groceries":     CategoryGroceries,
}

func decodeCategory(v decode.Value) (Category, error) {
	return decode.Enum(v, categories)
}

// Address is a merchant's physical location.
type Address struct {
	Address   string
	City      string
	Country   string
	Latitude  float64
	Longitude float64
	Postcode  string
	Region    string
}

func decodeAddress(v decode.Value) (Address, error) {
	var a Address
	var err error
	if a.Address, err = decode.Field(v, "address", decode.String); err != nil {
		return Address{}, err
	}
	if a.City, err = decode.Field(v, "city", decode.String); err != nil {
		return Address{}, err
	}
	if a.Country, err = decode.Field(v, "country", decode.String); err != nil {
		return Address{}, err
	}
	if a.Latitude, err = decode.Field(v, "latitude", decode.Float64); err != nil {
		return Address{}, err
	}
	if a.Longitude, err = decode.Field(v, "longitude", decode.Float64); err != nil {
		return Address{}, err
	}
	if a.Postcode, err = decode.Field(v, "postcode", decode.String); err != nil {
		return Address{}, err
	}
	if a.Region, err = decode.Field(v, "region", decode.String); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Merchant is the fully expanded counterparty of a transaction.
type Merchant struct {
	ID       string
	Address  Address
	Created  time.Time
	GroupID  string
	LogoURL  *url.URL
	Emoji    string
	Name     string
	Category Category
}

func decodeMerchant(v decode.Value) (Merchant, error) {
	var m Merchant
	var err error
	if m.ID, err = decode.Field(v, "id", decode.String); err != nil {
		return Merchant{}, err
	}
	if m.Address, err = decode.Field(v, "address", decodeAddress); err != nil {
		return Merchant{}, err
	}
	if m.Created, err = decode.Field(v, "created", decode.Time); err != nil {
		return Merchant{}, err
	}
	if m.GroupID, err = decode.Field(v, "group_id", decode.String); err != nil {
		return Merchant{}, err
	}
	if m.LogoURL, err = decode.Field(v, "logo", decode.URL); err != nil {
		return Merchant{}, err
	}
	if m.Emoji, err = decode.Field(v, "emoji", decode.String); err != nil {
		return Merchant{}, err
	}
	if m.Name, err = decode.Field(v, "name", decode.String); err != nil {
		return Merchant{}, err
	}
	if m.Category, err = decode.Field(v, "category", decodeCategory); err != nil {
		return Merchant{}, err
	}
	return m, nil
}

// Attachment is an image attached to a transaction.
type Attachment struct {
	ID      string
	Created time.Time
	Type    string // MIME type
	URL     *url.URL
}

func decodeAttachment(v decode.Value) (Attachment, error) {
	var a Attachment
	var err error
	if a.ID, err = decode.Field(v, "id", decode.String); err != nil {
		return Attachment{}, err
	}
	if a.Created, err = decode.Field(v, "created", decode.Time); err != nil {
		return Attachment{}, err
	}
	if a.Type, err = decode.Field(v, "type", decode.String); err != nil {
		return Attachment{}, err
	}
	if a.URL, err = decode.Field(v, "url", decode.URL); err != nil {
		return Attachment{}, err
	}
	return a, nil
}
