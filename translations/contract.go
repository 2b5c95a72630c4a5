// SPDX-License-Identifier: quiltery License 1.0

package translations

import (
	"context"
	_ "embed"
	"io"
	"sync"
	stdlibtime "time"

	"github.com/quiltery/lingo/connectors/cache"
	"github.com/quiltery/lingo/connectors/storage"
	"github.com/quiltery/lingo/time"
	"github.com/quiltery/lingo/translations/provider"
)

// Public API.

type (
	ContentType = string
	ContentID   = string
	Field       = string
	Language    = string

	// TranslationRecord is the unit of storage: one translated text for one
	// (contentType, contentID, field, language) tuple. When Language equals
	// SourceLanguage the record holds the canonical original text.
	TranslationRecord struct {
		UpdatedAt      *time.Time  `json:"updatedAt" db:"updated_at"`
		ContentType    ContentType `json:"contentType" db:"content_type"`
		ContentID      ContentID   `json:"contentId" db:"content_id"`
		Field          Field       `json:"field" db:"field"`
		Language       Language    `json:"language" db:"language"`
		SourceLanguage Language    `json:"sourceLanguage" db:"source_language"`
		TranslatedText string      `json:"translatedText" db:"translated_text"`
	}

	// Store persists TranslationRecords idempotently and reads them back in bulk.
	Store interface {
		Upsert(ctx context.Context, record *TranslationRecord) error
		GetOne(ctx context.Context, contentType ContentType, contentID ContentID, language Language) (map[Field]string, error)
		GetMany(ctx context.Context, contentType ContentType, contentIDs []ContentID, language Language) (map[ContentID]map[Field]string, error)
		Erase(ctx context.Context, contentType ContentType, contentID ContentID) error
	}

	// Orchestrator turns freshly written source-language fields into a fully
	// populated translation matrix, detached from the write that triggered it.
	Orchestrator interface {
		TranslateContent(ctx context.Context, contentType ContentType, contentID ContentID, fields map[Field]string, sourceLanguage ...Language)
		EraseContent(ctx context.Context, contentType ContentType, contentID ContentID) error
	}

	// Resolver overlays translated text onto already-loaded canonical records.
	// Results are partial overlays: a missing field means `keep the canonical value`.
	// The read path never fails because of this layer, hence no error returns.
	Resolver interface {
		ResolveOne(ctx context.Context, contentType ContentType, contentID ContentID, language Language) map[Field]string
		ResolveMany(ctx context.Context, contentType ContentType, contentIDs []ContentID, language Language) map[ContentID]map[Field]string
		Languages() []Language
		DefaultLanguage() Language
	}

	Client interface {
		Orchestrator
		Resolver
		io.Closer
	}
)

// Private API.

const (
	defaultLanguage = "en"

	fanOutDeadline                    = 5 * stdlibtime.Minute
	defaultMaxConcurrentProviderCalls = 8
	defaultOverlayCacheTTL            = 1 * stdlibtime.Hour
)

// .
var (
	//go:embed ddl.sql
	ddl string

	_ Client = (*client)(nil)
	_ Store  = (*pgStore)(nil)
)

type (
	client struct {
		cfg      *config
		db       *storage.DB
		store    Store
		cache    cache.DB
		provider provider.Client
		sem      chan struct{}
		inFlight sync.WaitGroup
	}

	pgStore struct {
		db              *storage.DB
		defaultLanguage Language
	}

	config struct {
		Translations struct {
			DefaultLanguage            Language            `yaml:"defaultLanguage" mapstructure:"defaultLanguage"`                       //nolint:tagliatelle // Nope.
			Languages                  []Language          `yaml:"languages" mapstructure:"languages"`                                   //nolint:tagliatelle // Nope.
			MaxConcurrentProviderCalls int                 `yaml:"maxConcurrentProviderCalls" mapstructure:"maxConcurrentProviderCalls"` //nolint:tagliatelle // Nope.
			OverlayCacheTTL            stdlibtime.Duration `yaml:"overlayCacheTtl" mapstructure:"overlayCacheTtl"`                       //nolint:tagliatelle // Nope.
			CacheEnabled               bool                `yaml:"cacheEnabled" mapstructure:"cacheEnabled"`                             //nolint:tagliatelle // Nope.
		} `yaml:"lingo/translations" mapstructure:"lingo/translations"` //nolint:tagliatelle // Nope.
	}
)
