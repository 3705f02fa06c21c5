package cache

import "context"

// NopStore is a Store that caches nothing. Every lookup is a miss.
type NopStore struct{}

// NewNopStore creates a no-op store.
func NewNopStore() *NopStore {
	return &NopStore{}
}

// Lookup implements Store.
func (*NopStore) Lookup(context.Context, string) (map[string]any, error) {
	return nil, ErrCacheMiss
}

// Store implements Store.
func (*NopStore) Store(context.Context, string, map[string]any) error {
	return nil
}

// Remove implements Store.
func (*NopStore) Remove(context.Context, string) error {
	return nil
}

// Clear implements Store.
func (*NopStore) Clear(context.Context) error {
	return nil
}
