// Package store persists encoded documents in pluggable backends.
//
// A Store maps string keys to opaque byte payloads with an optional TTL.
// Backends are provided for the local filesystem ([FileStore]), Redis
// ([RedisStore]) and MongoDB ([MongoStore]); [Compressed] wraps any of them
// with zstd compression and [NullStore] discards everything.
//
// Keys are produced by a [Keyer]. The default keyer derives a document key
// from the document URI and the encoding options, so the same resource
// written with a different version or style is stored separately:
//
//	keyer := store.NewDefaultKeyer()
//	key := keyer.DocumentKey("file:///models/a.json", store.DocumentKeyOpts{Version: "VERSION_1_1"})
//	err := s.Set(ctx, key, data, 24*time.Hour)
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/graphwire/pkg/observability"
)

// Store is a key/value store for encoded documents.
type Store interface {
	// Get returns the payload stored under key. The boolean reports whether
	// the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl uses the backend default, which
	// for most backends means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by stores that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// =============================================================================
// Keys
// =============================================================================

// DocumentKeyOpts are the encoding options that distinguish stored variants
// of the same document.
type DocumentKeyOpts struct {
	Version string `cbor:"1,keyasint,omitempty"`
	Style   int    `cbor:"2,keyasint,omitempty"`
}

// Keyer generates store keys.
type Keyer interface {
	// DocumentKey returns the key for the document at uri encoded with opts.
	DocumentKey(uri string, opts DocumentKeyOpts) string

	// ContentKey returns a content-addressed key for data.
	ContentKey(data []byte) string
}

// DefaultKeyer generates unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey returns "doc:" followed by a hash of uri and opts.
func (DefaultKeyer) DocumentKey(uri string, opts DocumentKeyOpts) string {
	return hashKey("doc", uri, opts)
}

// ContentKey returns "content:" followed by the hash of data.
func (DefaultKeyer) ContentKey(data []byte) string {
	return "content:" + Hash(data)
}

// NewKey returns a fresh random key under prefix.
func NewKey(prefix string) string {
	return prefix + ":" + uuid.NewString()
}

// =============================================================================
// Hooks
// =============================================================================

func observeGet(ctx context.Context, backend string, hit bool) {
	if hit {
		observability.Store().OnStoreHit(ctx, backend)
	} else {
		observability.Store().OnStoreMiss(ctx, backend)
	}
}

func observeSet(ctx context.Context, backend string, size int) {
	observability.Store().OnStoreSet(ctx, backend, size)
}
