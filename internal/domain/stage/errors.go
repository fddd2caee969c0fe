package stage

import "errors"

var (
	// ErrUnknownStage indicates a stage code outside the known set.
	ErrUnknownStage = errors.New("unknown stage")
	// ErrInvalidTransition indicates a backward transition without override.
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrInconsistent indicates the persisted stage did not match the
	// requested value on read-after-write verification.
	ErrInconsistent = errors.New("stage verification mismatch")
)
