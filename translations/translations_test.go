// SPDX-License-Identifier: quiltery License 1.0

package translations

import (
	"context"
	"fmt"
	"sync"
	stdlibtime "time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// In-memory test doubles honoring the same contracts as the production
// implementations: the store short-circuits default-language reads, the provider
// fails or succeeds per target language, the cache speaks just enough redis.

func newTestClient(store Store, translationProvider providerClient, overlayCache *fakeCache, languages ...Language) *client {
	cfg := new(config)
	cfg.Translations.DefaultLanguage = "en"
	cfg.Translations.Languages = languages
	if len(languages) == 0 {
		cfg.Translations.Languages = []Language{"en", "fr", "es", "de"}
	}
	cfg.Translations.MaxConcurrentProviderCalls = defaultMaxConcurrentProviderCalls
	cfg.Translations.OverlayCacheTTL = defaultOverlayCacheTTL
	cl := &client{
		cfg:   cfg,
		store: store,
		sem:   make(chan struct{}, cfg.Translations.MaxConcurrentProviderCalls),
	}
	if translationProvider != nil {
		cl.provider = translationProvider
	}
	if overlayCache != nil {
		cl.cache = overlayCache
	}

	return cl
}

type providerClient interface {
	Translate(ctx context.Context, text string, sourceLanguage, targetLanguage string) (string, error)
}

type inmemStore struct {
	mx              sync.Mutex
	defaultLanguage Language
	records         map[string]*TranslationRecord
	upsertOrder     []string
	upsertCalls     int
	getOneCalls     int
	getManyCalls    int
	eraseCalls      int
	failWrites      bool
	failReads       bool
}

func newInmemStore() *inmemStore {
	return &inmemStore{defaultLanguage: "en", records: make(map[string]*TranslationRecord)}
}

func recordKey(contentType ContentType, contentID ContentID, field Field, language Language) string {
	return fmt.Sprintf("%v|%v|%v|%v", contentType, contentID, field, language)
}

func (s *inmemStore) Upsert(_ context.Context, record *TranslationRecord) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.upsertCalls++
	if s.failWrites {
		return errors.New("bogus write failure")
	}
	key := recordKey(record.ContentType, record.ContentID, record.Field, record.Language)
	if _, found := s.records[key]; !found {
		s.upsertOrder = append(s.upsertOrder, key)
	}
	clone := *record
	s.records[key] = &clone

	return nil
}

func (s *inmemStore) GetOne(_ context.Context, contentType ContentType, contentID ContentID, language Language) (map[Field]string, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.getOneCalls++
	if s.failReads {
		return nil, errors.New("bogus read failure")
	}
	fields := make(map[Field]string)
	if language == s.defaultLanguage || contentID == "" {
		return fields, nil
	}
	for _, record := range s.records {
		if record.ContentType == contentType && record.ContentID == contentID && record.Language == language {
			fields[record.Field] = record.TranslatedText
		}
	}

	return fields, nil
}

func (s *inmemStore) GetMany(
	_ context.Context, contentType ContentType, contentIDs []ContentID, language Language,
) (map[ContentID]map[Field]string, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.getManyCalls++
	if s.failReads {
		return nil, errors.New("bogus read failure")
	}
	result := make(map[ContentID]map[Field]string)
	if language == s.defaultLanguage || len(contentIDs) == 0 {
		return result, nil
	}
	for _, contentID := range contentIDs {
		for _, record := range s.records {
			if record.ContentType == contentType && record.ContentID == contentID && record.Language == language {
				if result[contentID] == nil {
					result[contentID] = make(map[Field]string)
				}
				result[contentID][record.Field] = record.TranslatedText
			}
		}
	}

	return result, nil
}

func (s *inmemStore) Erase(_ context.Context, contentType ContentType, contentID ContentID) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.eraseCalls++
	if s.failWrites {
		return errors.New("bogus write failure")
	}
	for key, record := range s.records {
		if record.ContentType == contentType && record.ContentID == contentID {
			delete(s.records, key)
		}
	}

	return nil
}

func (s *inmemStore) record(contentType ContentType, contentID ContentID, field Field, language Language) *TranslationRecord {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.records[recordKey(contentType, contentID, field, language)]
}

func (s *inmemStore) upsertIndex(contentType ContentType, contentID ContentID, field Field, language Language) int {
	s.mx.Lock()
	defer s.mx.Unlock()
	for ix, key := range s.upsertOrder {
		if key == recordKey(contentType, contentID, field, language) {
			return ix
		}
	}

	return -1
}

type mockProvider struct {
	mx          sync.Mutex
	calls       int
	translateFn func(text string, sourceLanguage, targetLanguage string) (string, error)
}

func (m *mockProvider) Translate(_ context.Context, text string, sourceLanguage, targetLanguage string) (string, error) {
	m.mx.Lock()
	m.calls++
	m.mx.Unlock()

	return m.translateFn(text, sourceLanguage, targetLanguage)
}

func uppercasingProvider() *mockProvider {
	return &mockProvider{translateFn: func(text string, _, targetLanguage string) (string, error) {
		return fmt.Sprintf("[%v] %v", targetLanguage, text), nil
	}}
}

type fakeCache struct {
	redis.Cmdable
	mx   sync.Mutex
	data map[string]string
	gets int
	sets int
	dels int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.gets++
	if val, found := f.data[key]; found {
		return redis.NewStringResult(val, nil)
	}

	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ stdlibtime.Duration) *redis.StatusCmd {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.sets++
	f.data[key] = string(value.([]byte)) //nolint:forcetypeassert // Overlays are always encoded to bytes.

	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.dels++
	var deleted int64
	for _, key := range keys {
		if _, found := f.data[key]; found {
			delete(f.data, key)
			deleted++
		}
	}

	return redis.NewIntResult(deleted, nil)
}

func (f *fakeCache) Close() error {
	return nil
}

func (f *fakeCache) Ping(_ context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}
