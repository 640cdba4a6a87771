package store

import (
	"context"
	"time"

	"github.com/matzehuels/graphwire/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendNull  = "null"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string      `toml:"backend"`
	Dir      string      `toml:"dir"`
	Compress bool        `toml:"compress"`
	Redis    RedisConfig `toml:"redis"`
	Mongo    MongoConfig `toml:"mongo"`

	// TTL is the expiry callers apply to documents they save. Open ignores it.
	TTL time.Duration `toml:"ttl"`

	// Scope prefixes generated keys; see [Config.Keyer].
	Scope string `toml:"scope"`
}

// DefaultConfig returns a file store rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		Backend: BackendFile,
		Dir:     dir,
		Redis:   DefaultRedisConfig(),
		Mongo:   DefaultMongoConfig(),
	}
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendNull:
		s = NewNullStore()
	case BackendFile, "":
		if err := errors.ValidatePath(cfg.Dir); err != nil {
			return nil, err
		}
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		s, err = NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Compress {
		s = Compressed(s)
	}
	return s, nil
}

// Keyer returns the keyer for cfg: the default keyer, scoped when Scope is set.
func (cfg Config) Keyer() Keyer {
	if cfg.Scope == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(nil, cfg.Scope)
}
