package investor

import "errors"

var (
	// ErrInvalidCredentials covers unknown accounts, wrong passwords and
	// disabled investors; login failures deliberately don't say which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvestorNotFound indicates the investor doesn't exist.
	ErrInvestorNotFound = errors.New("investor not found")
)
