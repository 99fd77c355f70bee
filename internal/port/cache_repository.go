package port

import (
	"context"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

// CartRepository is the durable key-value snapshot store for session carts:
// read once at session start, written on every mutation.
type CartRepository interface {
	// Load returns nil when no snapshot exists for the session
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)

	Save(ctx context.Context, sessionID string, cart domain.Cart) error

	Delete(ctx context.Context, sessionID string) error
}

type IdempotencyGuard interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
