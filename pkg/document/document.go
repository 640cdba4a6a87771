// Package document loads and saves resources as encoded documents.
//
// It ties the codec to its sources and sinks: readers and writers, files,
// and [store.Store] backends. Every operation reports to the codec hooks in
// [observability] and logs a debug line with the codec statistics.
//
//	res := set.CreateResource("file:///models/library.json")
//	if _, err := document.LoadFile(ctx, "models/library.json", res, document.Options{}); err != nil {
//	    return err
//	}
package document

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphwire/pkg/codec"
	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/location"
	"github.com/matzehuels/graphwire/pkg/model"
	"github.com/matzehuels/graphwire/pkg/observability"
	"github.com/matzehuels/graphwire/pkg/store"
)

// Options configures document reads and writes.
type Options struct {
	// Codec configures encoding and decoding. Its Logger is also used for
	// the document-level log lines.
	Codec codec.Options

	// TTL applies to documents saved to a store. Zero uses the store default.
	TTL time.Duration
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "negative TTL %s", o.TTL)
	}
	return o.Codec.ValidateAndSetDefaults()
}

func (o *Options) logger() *log.Logger { return o.Codec.Logger }

// Result describes one read or write.
type Result struct {
	Stats    codec.Stats
	Size     int    // encoded bytes
	Digest   string // BLAKE3 digest of the encoded bytes
	Duration time.Duration
}

// Digest returns the content digest of an encoded document.
func Digest(data []byte) string {
	return store.Hash(data)
}

// =============================================================================
// Encoding
// =============================================================================

// Encode returns the encoded form of res.
func Encode(ctx context.Context, res *model.Resource, opts Options) ([]byte, Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Result{}, err
	}

	uri := ""
	if res != nil {
		uri = res.URI()
	}
	hooks := observability.Codec()
	hooks.OnEncodeStart(ctx, uri)
	start := time.Now()

	c, err := codec.New(opts.Codec)
	if err != nil {
		return nil, Result{}, err
	}
	data, stats, err := c.Marshal(res)
	result := Result{Stats: stats, Size: len(data), Duration: time.Since(start)}
	hooks.OnEncodeComplete(ctx, uri, stats.Objects, len(data), result.Duration, err)
	if err != nil {
		return nil, result, err
	}
	result.Digest = Digest(data)

	opts.logger().Debug("encoded document",
		"uri", uri,
		"version", stats.Version,
		"style", stats.Style,
		"objects", stats.Objects,
		"proxies", stats.Proxies,
		"bytes", len(data),
		"duration", result.Duration)
	return data, result, nil
}

// Write encodes res to w.
func Write(ctx context.Context, w io.Writer, res *model.Resource, opts Options) (Result, error) {
	data, result, err := Encode(ctx, res, opts)
	if err != nil {
		return result, err
	}
	if _, err := w.Write(data); err != nil {
		return result, errors.Wrap(errors.ErrCodeInternal, err, "write document")
	}
	return result, nil
}

// SaveFile encodes res to the file at path, replacing it atomically. When
// res has no absolute URI, references are made relative to the file.
func SaveFile(ctx context.Context, path string, res *model.Resource, opts Options) (Result, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Result{}, err
	}
	if err := fileBase(&opts, path, res); err != nil {
		return Result{}, err
	}
	data, result, err := Encode(ctx, res, opts)
	if err != nil {
		return result, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return result, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return result, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return result, errors.Wrap(errors.ErrCodeInternal, err, "replace %s", path)
	}
	return result, nil
}

// Save encodes res and stores it under key.
func Save(ctx context.Context, s store.Store, key string, res *model.Resource, opts Options) (Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Result{}, err
	}
	if err := errors.ValidateKey(key); err != nil {
		return Result{}, err
	}
	data, result, err := Encode(ctx, res, opts)
	if err != nil {
		return result, err
	}
	err = store.RetryWithBackoff(ctx, func() error {
		return s.Set(ctx, key, data, opts.TTL)
	})
	if err != nil {
		return result, err
	}
	opts.logger().Debug("saved document", "key", key, "digest", result.Digest)
	return result, nil
}

// =============================================================================
// Decoding
// =============================================================================

// Decode decodes data into res. On error res is left unchanged.
func Decode(ctx context.Context, data []byte, res *model.Resource, opts Options) (Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if res == nil {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "nil resource")
	}

	uri := res.URI()
	hooks := observability.Codec()
	hooks.OnDecodeStart(ctx, uri, len(data))
	start := time.Now()

	c, err := codec.New(opts.Codec)
	if err != nil {
		return Result{}, err
	}
	stats, err := c.Unmarshal(data, res)
	result := Result{Stats: stats, Size: len(data), Duration: time.Since(start)}
	hooks.OnDecodeComplete(ctx, uri, stats.Objects, result.Duration, err)
	if err != nil {
		return result, err
	}
	result.Digest = Digest(data)

	l := opts.logger()
	l.Debug("decoded document",
		"uri", uri,
		"version", stats.Version,
		"style", stats.Style,
		"objects", stats.Objects,
		"proxies", stats.Proxies,
		"bytes", len(data),
		"duration", result.Duration)
	if stats.Recovered > 0 {
		l.Warn("document contained malformed values", "uri", uri, "count", stats.Recovered)
	}
	return result, nil
}

// Read decodes the document read from r into res.
func Read(ctx context.Context, r io.Reader, res *model.Resource, opts Options) (Result, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "read document")
	}
	return Decode(ctx, buf.Bytes(), res, opts)
}

// LoadFile decodes the file at path into res. When res has no absolute URI,
// references are resolved against the file.
func LoadFile(ctx context.Context, path string, res *model.Resource, opts Options) (Result, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Result{}, err
	}
	if err := fileBase(&opts, path, res); err != nil {
		return Result{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Result{}, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return Decode(ctx, data, res, opts)
}

// Load decodes the document stored under key into res.
func Load(ctx context.Context, s store.Store, key string, res *model.Resource, opts Options) (Result, error) {
	if err := errors.ValidateKey(key); err != nil {
		return Result{}, err
	}
	var (
		data []byte
		ok   bool
	)
	err := store.RetryWithBackoff(ctx, func() error {
		var err error
		data, ok, err = s.Get(ctx, key)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, errors.New(errors.ErrCodeNotFound, "no document stored under %q", key)
	}
	return Decode(ctx, data, res, opts)
}

// fileBase points the codec base at path unless the resource or the caller
// already supplies one.
func fileBase(opts *Options, path string, res *model.Resource) error {
	if opts.Codec.BaseURI != "" || res != nil && location.IsBase(res.URI()) {
		return nil
	}
	uri, err := location.FromPath(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	opts.Codec.BaseURI = uri
	return nil
}
