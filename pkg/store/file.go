package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// FileStore keeps documents as files in a directory, for CLI usage.
// Each entry is a CBOR envelope holding the payload and its expiry.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// fileEntry wraps stored data with metadata.
type fileEntry struct {
	Data      []byte `cbor:"1,keyasint"`
	ExpiresAt int64  `cbor:"2,keyasint,omitempty"` // unix nanoseconds; 0 never expires
}

func (e fileEntry) expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixNano() > e.ExpiresAt
}

// Get retrieves a document from the store.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := s.Path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		observeGet(ctx, "file", false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := cbor.Unmarshal(data, &entry); err != nil || entry.expired(time.Now()) {
		// Corrupt or expired entry - treat as miss
		_ = os.Remove(path)
		observeGet(ctx, "file", false)
		return nil, false, nil
	}

	observeGet(ctx, "file", true)
	return entry.Data, true, nil
}

// Set stores a document.
func (s *FileStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl).UnixNano()
	}

	entryData, err := cbor.Marshal(entry)
	if err != nil {
		return err
	}

	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, entryData, 0644); err != nil {
		return err
	}
	observeSet(ctx, "file", len(data))
	return nil
}

// Delete removes a document from the store.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry below the store directory.
func (s *FileStore) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// Path returns the file that holds key.
// The first two hash characters name a subdirectory to avoid too many files in one dir.
func (s *FileStore) Path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".cbor")
}

// Ensure FileStore implements Store and Clearer.
var (
	_ Store   = (*FileStore)(nil)
	_ Clearer = (*FileStore)(nil)
)
