// SPDX-License-Identifier: quiltery License 1.0

package cache

import (
	"context"
	"runtime"
	stdlibtime "time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	appCfg "github.com/quiltery/lingo/config"
	"github.com/quiltery/lingo/log"
)

//nolint:mnd // Static client tuning.
func MustConnect(ctx context.Context, applicationYAMLKey string) DB {
	var cfg config
	appCfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	if cfg.Cache.URL == "" {
		log.Panic(errors.Errorf("url is required for %q", applicationYAMLKey))
	}
	if cfg.Cache.ConnectionsPerCore == 0 {
		cfg.Cache.ConnectionsPerCore = 10
	}
	opts, err := redis.ParseURL(cfg.Cache.URL)
	log.Panic(errors.Wrapf(err, "failed to parse cache url %v", cfg.Cache.URL)) //nolint:revive // Intended.
	if opts.Username == "" {
		opts.Username = cfg.Cache.Credentials.User
	}
	if opts.Password == "" {
		opts.Password = cfg.Cache.Credentials.Password
	}
	opts.ClientName = applicationYAMLKey
	opts.MaxRetries = 25
	opts.MinRetryBackoff = 10 * stdlibtime.Millisecond
	opts.MaxRetryBackoff = 1 * stdlibtime.Second
	opts.DialTimeout = 30 * stdlibtime.Second
	opts.ReadTimeout = 30 * stdlibtime.Second
	opts.WriteTimeout = 30 * stdlibtime.Second
	opts.ConnMaxIdleTime = 60 * stdlibtime.Second
	opts.ContextTimeoutEnabled = true
	opts.PoolFIFO = true
	opts.PoolSize = cfg.Cache.ConnectionsPerCore * runtime.GOMAXPROCS(-1)
	opts.MinIdleConns = 1
	opts.MaxIdleConns = 1
	client := redis.NewClient(opts)
	result, err := client.Ping(ctx).Result()
	log.Panic(errors.Wrapf(err, "failed to ping cache at %v", cfg.Cache.URL))
	if result != "PONG" {
		log.Panic(errors.Errorf("unexpected ping response: %v", result))
	}

	return client
}
