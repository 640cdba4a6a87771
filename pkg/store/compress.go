package store

import (
	"context"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/graphwire/pkg/errors"
)

// zstdEncoder and zstdDecoder are shared by every compressed store;
// EncodeAll and DecodeAll are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// CompressedStore compresses payloads with zstd before handing them to the
// wrapped store.
type CompressedStore struct {
	inner Store
}

// Compressed wraps inner with zstd compression.
func Compressed(inner Store) *CompressedStore {
	return &CompressedStore{inner: inner}
}

// Get retrieves and decompresses a document.
func (s *CompressedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	plain, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decompress %q", key)
	}
	return plain, true, nil
}

// Set compresses and stores a document.
func (s *CompressedStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, key, zstdEncoder.EncodeAll(data, nil), ttl)
}

// Delete removes a document.
func (s *CompressedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Clear clears the wrapped store if it supports clearing.
func (s *CompressedStore) Clear(ctx context.Context) error {
	c, ok := s.inner.(Clearer)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "store cannot be cleared")
	}
	return c.Clear(ctx)
}

// Close closes the wrapped store.
func (s *CompressedStore) Close() error {
	return s.inner.Close()
}

var _ Store = (*CompressedStore)(nil)
