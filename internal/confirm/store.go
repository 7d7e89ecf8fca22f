// Package confirm issues and consumes the one-time tokens that confirm a pay
// action came from a deliberate user click. Consuming is atomic, so a
// double-submitted form (page refresh, double click) settles at most once.
package confirm

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Store interface {
	// Issue creates a token bound to userID, valid for the configured TTL.
	Issue(ctx context.Context, userID snowflake.ID) (string, error)

	// Consume invalidates the token and reports whether it was still valid.
	// A second Consume of the same token returns false.
	Consume(ctx context.Context, userID snowflake.ID, token string) (bool, error)
}

var ErrInvalidUser = errors.New("invalid_user")
