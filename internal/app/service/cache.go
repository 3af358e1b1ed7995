package service

import "context"

// Cache groups invalidated after catalog writes.
const CacheGroupProducts = "products"

// CacheInvalidator drops cached responses of a group. A nil invalidator is allowed.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, group string) error
}

func invalidate(ctx context.Context, inv CacheInvalidator, group string) {
	if inv == nil {
		return
	}
	_ = inv.Invalidate(ctx, group)
}
