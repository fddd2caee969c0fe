package bitable

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is returned for validation failures and other permanent
	// API rejections. Rejections are surfaced immediately, never retried.
	ErrRejected = errors.New("record store rejected request")

	// ErrUnavailable is returned once the retry budget for transient
	// failures is exhausted. The effect of an interrupted write is unknown
	// and must be reconciled by re-reading state.
	ErrUnavailable = errors.New("record store unavailable")
)

// API status codes treated as an expired tenant token. The token is dropped
// and re-acquired before the attempt is retried.
const (
	codeOK               = 0
	codeAuthTokenInvalid = 99991661
	codeAuthTokenExpired = 99991663
)

// APIError is a non-zero status returned in the store's response envelope.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store api error %d: %s", e.Code, e.Msg)
}

func (e *APIError) authExpired() bool {
	return e.Code == codeAuthTokenInvalid || e.Code == codeAuthTokenExpired
}
