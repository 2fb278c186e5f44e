package mondo

import (
	"errors"
	"fmt"

	"github.com/mondosdk/mondo/decode"
)

// Sentinels for local precondition failures. No network I/O has
// happened when one of these is returned.
var (
	// ErrAuthenticationRequired indicates no usable token is present;
	// the caller must complete a login flow first.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrStateMismatch indicates the state returned by the identity
	// provider's redirect does not match the one sent.
	ErrStateMismatch = errors.New("oauth state mismatch")

	// ErrMissingAuthCode indicates the provider redirect carried no code.
	ErrMissingAuthCode = errors.New("missing authorization code")
)

// APIErrorCode classifies a server rejection.
type APIErrorCode int

const (
	ErrCodeUnknown APIErrorCode = iota
	ErrCodeRequestFailed
	ErrCodeCouldNotAuthenticate
	ErrCodeBadAccessToken
	ErrCodeOther
	ErrCodeTransport
)

func (c APIErrorCode) String() string {
	switch c {
	case ErrCodeRequestFailed:
		return "request_failed"
	case ErrCodeCouldNotAuthenticate:
		return "could_not_authenticate"
	case ErrCodeBadAccessToken:
		return "bad_access_token"
	case ErrCodeOther:
		return "other"
	case ErrCodeTransport:
		return "transport"
	}
	return "unknown"
}

// APIError is a request the server rejected (non-200 with a code/message
// body) or a transport-level failure (Code == ErrCodeTransport, with
// the underlying network error in Err).
type APIError struct {
	Code    APIErrorCode
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("mondo: %s: %v", e.Code, e.Err)
	case e.Message != "":
		return fmt.Sprintf("mondo: %s: %s", e.Code, e.Message)
	}
	return "mondo: unknown error"
}

func (e *APIError) Unwrap() error { return e.Err }

var apiErrorCodes = map[string]APIErrorCode{
	"internal_service.request_failed":    ErrCodeRequestFailed,
	"bad_request.could_not_authenticate": ErrCodeCouldNotAuthenticate,
	"unauthorized.bad_access_token":      ErrCodeBadAccessToken,
}

// classifyAPIError maps a non-200 response body to an APIError. Bodies
// without the code/message shape fall back to Unknown with the HTTP
// status for context.
func classifyAPIError(status int, body []byte) *APIError {
	v, err := decode.Parse(body)
	if err == nil {
		code, codeErr := decode.Field(v, "code", decode.String)
		message, msgErr := decode.Field(v, "message", decode.String)
		switch {
		case codeErr == nil && msgErr == nil:
			mapped, ok := apiErrorCodes[code]
			if !ok {
				mapped = ErrCodeOther
			}
			return &APIError{Code: mapped, Message: message}
		case msgErr == nil:
			return &APIError{Code: ErrCodeOther, Message: message}
		}
	}
	return &APIError{Code: ErrCodeUnknown, Message: fmt.Sprintf("unexpected status %d", status)}
}

func transportError(err error) *APIError {
	return &APIError{Code: ErrCodeTransport, Err: err}
}
