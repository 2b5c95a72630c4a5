// SPDX-License-Identifier: quiltery License 1.0

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	stdlibtime "time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(baseURL string) *translator {
	cfg := new(config)
	cfg.Provider.BaseURL = baseURL
	cfg.Provider.Credentials.APIKey = "bogus-api-key"

	return &translator{cfg: cfg}
}

func TestNewWithoutCredentials(t *testing.T) { //nolint:paralleltest // It mutates the environment.
	t.Setenv("SELF_TRANSLATIONS_PROVIDER_APIKEY", "")
	t.Setenv("TRANSLATIONS_PROVIDER_APIKEY", "")

	assert.Nil(t, New("self"))
}

func TestTranslate(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/v2/translate", request.URL.Path)
		assert.Equal(t, "DeepL-Auth-Key bogus-api-key", request.Header.Get("Authorization"))
		writer.Header().Set("Content-Type", "application/json")
		_, err := writer.Write([]byte(`{"translations":[{"detected_source_language":"EN","text":"Cabane en rondins moderne"}]}`))
		assert.NoError(t, err)
	}))
	defer server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*stdlibtime.Second)
	defer cancel()

	translatedText, err := newTestTranslator(server.URL).Translate(ctx, "Modern Log Cabin", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Cabane en rondins moderne", translatedText)
}

func TestTranslateErrorStatus(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusTooManyRequests)
		_, err := writer.Write([]byte(`{"message":"quota exceeded"}`))
		assert.NoError(t, err)
	}))
	defer server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*stdlibtime.Second)
	defer cancel()

	translatedText, err := newTestTranslator(server.URL).Translate(ctx, "Modern Log Cabin", "en", "fr")
	require.Error(t, err)
	assert.Empty(t, translatedText)
	assert.Contains(t, err.Error(), "429")
}

func TestTranslateEmptyResponse(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, err := writer.Write([]byte(`{"translations":[]}`))
		assert.NoError(t, err)
	}))
	defer server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*stdlibtime.Second)
	defer cancel()

	translatedText, err := newTestTranslator(server.URL).Translate(ctx, "Modern Log Cabin", "en", "fr")
	require.Error(t, err)
	assert.Empty(t, translatedText)
}

func TestTranslateUnreachableProvider(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*stdlibtime.Second)
	defer cancel()

	translatedText, err := newTestTranslator("http://127.0.0.1:1").Translate(ctx, "Modern Log Cabin", "en", "fr")
	require.Error(t, err)
	assert.Empty(t, translatedText)
}
