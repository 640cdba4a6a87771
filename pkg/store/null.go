package store

import (
	"context"
	"time"
)

// NullStore is a no-op store that never keeps anything.
// Useful for testing or when persistence is disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Get always reports a miss.
func (s *NullStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	observeGet(ctx, "null", false)
	return nil, false, nil
}

// Set does nothing.
func (s *NullStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
