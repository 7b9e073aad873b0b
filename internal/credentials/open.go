package credentials

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a store.
type Options struct {
	Backend string

	// Path is the file for BackendFile.
	Path string

	// RedisAddr, RedisPassword, RedisDB, RedisKey and TTL configure BackendRedis.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	TTL           time.Duration
}

// Open returns the store for opts.Backend and a function releasing its
// resources.
func Open(opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, nil, fmt.Errorf("credentials file path is required")
		}
		return NewFileStore(opts.Path), noop, nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, nil, fmt.Errorf("credentials redis address is required")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		return NewRedisStore(client, opts.RedisKey, opts.TTL), client.Close, nil
	case BackendMemory:
		return NewMemoryStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown credentials backend %q", opts.Backend)
	}
}
