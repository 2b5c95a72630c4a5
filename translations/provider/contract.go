// SPDX-License-Identifier: quiltery License 1.0

package provider

import (
	"context"
	stdlibtime "time"
)

// Public API.

type (
	// Client calls the external translation service for one text string at a time.
	// It has no retry/backoff logic of its own: retrying is the caller's call to make.
	Client interface {
		Translate(ctx context.Context, text string, sourceLanguage, targetLanguage string) (translatedText string, err error)
	}
)

// Private API.

const (
	requestDeadline = 25 * stdlibtime.Second
)

type (
	translator struct {
		cfg *config
	}
	config struct {
		Provider struct {
			Credentials struct {
				APIKey string `yaml:"apiKey" mapstructure:"apiKey"` //nolint:tagliatelle // Nope.
			} `yaml:"credentials" mapstructure:"credentials"`
			BaseURL string `yaml:"baseUrl" mapstructure:"baseUrl"` //nolint:tagliatelle // Nope.
		} `yaml:"lingo/translations/provider" mapstructure:"lingo/translations/provider"` //nolint:tagliatelle // Nope.
	}
)
