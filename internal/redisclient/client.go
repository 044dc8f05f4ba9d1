package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis for the readiness probe.
type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// NewFromURL accepts redis://[:password@]host:port/db.
func NewFromURL(raw string) (*Client, error) {
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	return &Client{redisdb: redis.NewClient(opts)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}
