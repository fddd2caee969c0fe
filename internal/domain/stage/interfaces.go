package stage

import "context"

// Repository provides persistence for the stage singleton record.
type Repository interface {
	Current(ctx context.Context) (string, error)
	Set(ctx context.Context, code string) error
}
