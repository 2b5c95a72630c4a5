// SPDX-License-Identifier: quiltery License 1.0

package translations

import (
	"context"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	appCfg "github.com/quiltery/lingo/config"
	"github.com/quiltery/lingo/connectors/cache"
	"github.com/quiltery/lingo/connectors/storage"
	"github.com/quiltery/lingo/log"
	"github.com/quiltery/lingo/translations/provider"
)

func New(ctx context.Context, applicationYAMLKey string) Client {
	var cfg config
	appCfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	if cfg.Translations.DefaultLanguage == "" {
		cfg.Translations.DefaultLanguage = defaultLanguage
	}
	if len(cfg.Translations.Languages) == 0 {
		log.Panic(errors.Errorf("at least one supported language is required for %q", applicationYAMLKey))
	}
	if !slices.Contains(cfg.Translations.Languages, cfg.Translations.DefaultLanguage) {
		cfg.Translations.Languages = append(cfg.Translations.Languages, cfg.Translations.DefaultLanguage)
	}
	if cfg.Translations.MaxConcurrentProviderCalls <= 0 {
		cfg.Translations.MaxConcurrentProviderCalls = defaultMaxConcurrentProviderCalls
	}
	if cfg.Translations.OverlayCacheTTL <= 0 {
		cfg.Translations.OverlayCacheTTL = defaultOverlayCacheTTL
	}
	db := storage.MustConnect(ctx, ddl, applicationYAMLKey)
	var overlayCache cache.DB
	if cfg.Translations.CacheEnabled {
		overlayCache = cache.MustConnect(ctx, applicationYAMLKey)
	}

	return &client{
		cfg:      &cfg,
		db:       db,
		store:    NewStore(db, cfg.Translations.DefaultLanguage),
		cache:    overlayCache,
		provider: provider.New(applicationYAMLKey),
		sem:      make(chan struct{}, cfg.Translations.MaxConcurrentProviderCalls),
	}
}

func (c *client) Languages() []Language {
	return slices.Clone(c.cfg.Translations.Languages)
}

func (c *client) DefaultLanguage() Language {
	return c.cfg.Translations.DefaultLanguage
}

func (c *client) targetLanguages(sourceLanguage Language) []Language {
	targets := make([]Language, 0, len(c.cfg.Translations.Languages))
	for _, language := range c.cfg.Translations.Languages {
		if language != sourceLanguage {
			targets = append(targets, language)
		}
	}

	return targets
}

func (c *client) Close() error {
	c.inFlight.Wait()
	var errs *multierror.Error
	if c.cache != nil {
		errs = multierror.Append(errs, errors.Wrap(c.cache.Close(), "failed to close overlay cache"))
	}
	if c.db != nil {
		errs = multierror.Append(errs, errors.Wrap(c.db.Close(), "failed to close storage"))
	}

	return errs.ErrorOrNil() //nolint:wrapcheck // Those are already wrapped.
}
