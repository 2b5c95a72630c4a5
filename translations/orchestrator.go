// SPDX-License-Identifier: quiltery License 1.0

package translations

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/quiltery/lingo/log"
)

// TranslateContent is fire-and-forget: it detaches from the caller's control flow and
// never propagates failures back to it. The write that triggered it has already
// responded to its own client by the time any of this runs.
func (c *client) TranslateContent(
	ctx context.Context, contentType ContentType, contentID ContentID, fields map[Field]string, sourceLanguage ...Language,
) {
	src := c.cfg.Translations.DefaultLanguage
	if len(sourceLanguage) == 1 && sourceLanguage[0] != "" {
		src = sourceLanguage[0]
	}
	detachedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fanOutDeadline)
	c.inFlight.Add(1)
	go func() {
		defer c.inFlight.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Error(errors.Errorf("translation fan-out panicked: %v", r), "contentType", contentType, "contentId", contentID)
			}
		}()
		log.Error(errors.Wrapf(c.translateContent(detachedCtx, contentType, contentID, src, fields),
			"translation fan-out failed for %v:%v", contentType, contentID))
	}()
}

// translateContent persists the canonical source text for every non-empty field first,
// then fans out one provider call per (field, target language). Failures are collected,
// never fatal: each (field, language) pair succeeds or fails on its own.
func (c *client) translateContent(
	ctx context.Context, contentType ContentType, contentID ContentID, src Language, fields map[Field]string,
) error {
	targets := c.targetLanguages(src)
	wg := new(sync.WaitGroup)
	var mx sync.Mutex
	var errs *multierror.Error
	collectErr := func(err error) {
		mx.Lock()
		errs = multierror.Append(errs, err)
		mx.Unlock()
	}
	anyPersisted := false
	for field, sourceText := range fields {
		sourceText = strings.TrimSpace(sourceText)
		if sourceText == "" {
			continue
		}
		anyPersisted = true
		record := &TranslationRecord{
			ContentType:    contentType,
			ContentID:      contentID,
			Field:          field,
			Language:       src,
			SourceLanguage: src,
			TranslatedText: sourceText,
		}
		if err := c.store.Upsert(ctx, record); err != nil {
			collectErr(errors.Wrapf(err, "failed to persist source text for field %q", field))
		}
		if c.provider == nil { // No provider credentials configured, source text alone has to do.
			continue
		}
		for _, target := range targets {
			wg.Add(1)
			go func(field Field, sourceText string, target Language) {
				defer wg.Done()
				if err := c.translateField(ctx, contentType, contentID, field, sourceText, src, target); err != nil {
					collectErr(err)
				}
			}(field, sourceText, target)
		}
	}
	wg.Wait()
	if anyPersisted {
		c.invalidateOverlays(ctx, contentType, contentID)
	}

	return errs.ErrorOrNil() //nolint:wrapcheck // Those are already wrapped.
}

func (c *client) translateField(
	ctx context.Context, contentType ContentType, contentID ContentID, field Field, sourceText string, src, target Language,
) error {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "gave up on translating field %q into %q", field, target)
	}
	defer func() {
		<-c.sem
	}()
	translatedText, err := c.provider.Translate(ctx, sourceText, src, target)
	if err != nil {
		return errors.Wrapf(err, "provider call failed for field %q, target language %q", field, target)
	}
	record := &TranslationRecord{
		ContentType:    contentType,
		ContentID:      contentID,
		Field:          field,
		Language:       target,
		SourceLanguage: src,
		TranslatedText: translatedText,
	}

	return errors.Wrapf(c.store.Upsert(ctx, record), "failed to persist %q translation of field %q", target, field)
}

func (c *client) EraseContent(ctx context.Context, contentType ContentType, contentID ContentID) error {
	if err := c.store.Erase(ctx, contentType, contentID); err != nil {
		return errors.Wrapf(err, "failed to erase translations for %v:%v", contentType, contentID)
	}
	c.invalidateOverlays(ctx, contentType, contentID)

	return nil
}
