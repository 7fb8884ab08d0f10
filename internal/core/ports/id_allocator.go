package ports

import "context"

// IDAllocator hands out strictly increasing numeric suffixes per external-id
// prefix. Next is safe under concurrent callers; the store-level unique index
// on user_id remains the final arbiter.
type IDAllocator interface {
	// Next returns the next unused suffix for the prefix.
	Next(ctx context.Context, prefix string) (int64, error)
	// Seed raises the sequence floor to at least current. Idempotent.
	Seed(ctx context.Context, prefix string, current int64) error
	// Peek returns the suffix Next would most likely return, without
	// consuming it. Used by the next-id preview endpoint.
	Peek(ctx context.Context, prefix string) (int64, error)
}
