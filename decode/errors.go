package decode

import "strings"

// Kind discriminates the decode failure variants.
type Kind int

const (
	// KindNull: a required value was JSON null (or the field was absent).
	KindNull Kind = iota + 1
	// KindWrongType: the value exists but has a different JSON type.
	KindWrongType
	// KindInvalid: the value has the right type but fails validation
	// (unparsable timestamp, unknown enum member, malformed URL, ...).
	KindInvalid
	// KindKey: a failure inside a named field or an array element,
	// carrying the key and the nested error.
	KindKey
)

// Error is a decode failure. Key errors nest recursively, so the chain
// spells out the path from the document root to the offending value,
// e.g. transactions.[1].id: null value.
type Error struct {
	Kind Kind
	Raw  string // offending raw text, set for KindInvalid
	Key  string // field name or "[index]", set for KindKey
	Next *Error // nested error, set for KindKey
}

func (e *Error) Error() string {
	var b strings.Builder
	leaf := e
	for leaf.Kind == KindKey {
		b.WriteString(leaf.Key)
		b.WriteByte('.')
		leaf = leaf.Next
	}
	path := b.String()
	if path != "" {
		path = path[:len(path)-1] + ": "
	}
	switch leaf.Kind {
	case KindNull:
		return path + "null value"
	case KindWrongType:
		return path + "wrong type"
	case KindInvalid:
		return path + "invalid value (" + leaf.Raw + ")"
	}
	return path + "decode error"
}

// Path returns the accumulated key path, empty for a root-level error.
func (e *Error) Path() string {
	parts := make([]string, 0, 4)
	for n := e; n.Kind == KindKey; n = n.Next {
		parts = append(parts, n.Key)
	}
	return strings.Join(parts, ".")
}

// Leaf returns the innermost error, unwrapping all key frames.
func (e *Error) Leaf() *Error {
	n := e
	for n.Kind == KindKey {
		n = n.Next
	}
	return n
}

func (e *Error) Unwrap() error {
	if e.Next == nil {
		return nil
	}
	return e.Next
}
