// SPDX-License-Identifier: quiltery License 1.0

package cache

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"
)

// Public API.

type (
	DB interface {
		redis.Cmdable
		io.Closer
		Ping(ctx context.Context) *redis.StatusCmd
	}
)

// Private API.

type (
	config struct {
		Cache struct {
			Credentials struct {
				User     string `yaml:"user"`
				Password string `yaml:"password"`
			} `yaml:"credentials" mapstructure:"credentials"`
			URL                string `yaml:"url" mapstructure:"url"`
			ConnectionsPerCore int    `yaml:"connectionsPerCore" mapstructure:"connectionsPerCore"` //nolint:tagliatelle // Nope.
		} `yaml:"lingo/connectors/cache" mapstructure:"lingo/connectors/cache"` //nolint:tagliatelle // Nope.
	}
)
