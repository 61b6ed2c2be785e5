package cache

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

var ErrMissingURL = errors.New("REDIS_URL is not set")

// Open builds a client from a redis:// or rediss:// URL. The connection is
// established lazily on first command.
func Open(url string) (*redis.Client, error) {
	if url == "" {
		return nil, ErrMissingURL
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}
