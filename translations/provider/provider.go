// SPDX-License-Identifier: quiltery License 1.0

package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
	"github.com/pkg/errors"

	appCfg "github.com/quiltery/lingo/config"
	"github.com/quiltery/lingo/log"
)

func init() { //nolint:gochecknoinits // It's the only way to tweak the client.
	req.DefaultClient().SetJsonMarshal(json.Marshal)
	req.DefaultClient().SetJsonUnmarshal(json.Unmarshal)
	req.DefaultClient().GetClient().Timeout = requestDeadline
}

// New returns nil if no API key is configured: the translation service is an optional
// dependency, its absence degrades translation fan-out instead of failing startup.
func New(applicationYAMLKey string) Client {
	var cfg config
	appCfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	if cfg.Provider.Credentials.APIKey == "" {
		module := strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(applicationYAMLKey, "-", "_"), "/", "_"))
		cfg.Provider.Credentials.APIKey = os.Getenv(fmt.Sprintf("%s_TRANSLATIONS_PROVIDER_APIKEY", module))
		if cfg.Provider.Credentials.APIKey == "" {
			cfg.Provider.Credentials.APIKey = os.Getenv("TRANSLATIONS_PROVIDER_APIKEY")
		}
	}
	if cfg.Provider.Credentials.APIKey == "" {
		log.Warn("no translation provider credentials configured, translation fan-out is disabled", "applicationYAMLKey", applicationYAMLKey)

		return nil
	}

	return &translator{cfg: &cfg}
}

func (t *translator) Translate(ctx context.Context, text string, sourceLanguage, targetLanguage string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestDeadline)
	defer cancel()
	var result struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	body := map[string]any{
		"text":        append(make([]string, 0, 1), text),
		"source_lang": strings.ToUpper(sourceLanguage),
		"target_lang": strings.ToUpper(targetLanguage),
	}
	url := t.cfg.Provider.BaseURL + "/v2/translate"
	resp, err := req.
		SetContext(reqCtx).
		SetContentType("application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "DeepL-Auth-Key "+t.cfg.Provider.Credentials.APIKey).
		SetBodyJsonMarshal(body).
		SetSuccessResult(&result).
		Post(url)
	if err != nil {
		return "", errors.Wrapf(err, "translation request to `%v` failed for target language %q", url, targetLanguage)
	}
	if resp.IsErrorState() {
		respBody, pErr := resp.ToString()
		if pErr != nil {
			return "", errors.Wrapf(pErr, "translation request to `%v` failed with status %v, unable to read response body", url, resp.GetStatusCode())
		}

		return "", errors.Errorf("translation request to `%v` failed with status %v, response: %v", url, resp.GetStatusCode(), respBody)
	}
	if len(result.Translations) == 0 {
		return "", errors.Errorf("empty translation response for target language %q", targetLanguage)
	}

	return result.Translations[0].Text, nil
}
