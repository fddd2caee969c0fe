package ledger

import "errors"

var (
	// ErrOverBudget indicates the commit would exceed the investor's quota.
	ErrOverBudget = errors.New("over budget")
	// ErrStageClosed indicates the current stage does not accept investments.
	ErrStageClosed = errors.New("stage closed for investment")
	// ErrInvalidAmount indicates a non-positive investment amount.
	ErrInvalidAmount = errors.New("investment amount must be positive")
	// ErrInvestorNotFound indicates the investor doesn't exist.
	ErrInvestorNotFound = errors.New("investor not found")
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrDisabled indicates the investor or project is not enabled.
	ErrDisabled = errors.New("participant disabled")
)
