// SPDX-License-Identifier: quiltery License 1.0

package translations

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quiltery/lingo/log"
)

func (c *client) ResolveOne(ctx context.Context, contentType ContentType, contentID ContentID, language Language) map[Field]string {
	overlays := c.ResolveMany(ctx, contentType, []ContentID{contentID}, language)
	if overlay, found := overlays[contentID]; found {
		return overlay
	}

	return make(map[Field]string)
}

// ResolveMany absorbs every failure into `no overlay available`: a read request for
// content must never fail because the translation layer is down, it just degrades to
// the canonical language.
func (c *client) ResolveMany(
	ctx context.Context, contentType ContentType, contentIDs []ContentID, language Language,
) map[ContentID]map[Field]string {
	result := make(map[ContentID]map[Field]string, len(contentIDs))
	if language == c.cfg.Translations.DefaultLanguage || len(contentIDs) == 0 {
		return result
	}
	misses := make([]ContentID, 0, len(contentIDs))
	for _, contentID := range contentIDs {
		if overlay, found := c.cachedOverlay(ctx, contentType, contentID, language); found {
			if len(overlay) != 0 {
				result[contentID] = overlay
			}

			continue
		}
		misses = append(misses, contentID)
	}
	if len(misses) == 0 {
		return result
	}
	fetched, err := c.store.GetMany(ctx, contentType, misses, language)
	if err != nil {
		log.Error(errors.Wrapf(err, "failed to resolve translations for %v:%v, falling back to source language", contentType, misses),
			"language", language)

		return result
	}
	for _, contentID := range misses {
		overlay := fetched[contentID]
		if overlay == nil {
			overlay = make(map[Field]string)
		}
		c.cacheOverlay(ctx, contentType, contentID, language, overlay)
		if len(overlay) != 0 {
			result[contentID] = overlay
		}
	}

	return result
}

func (c *client) cachedOverlay(ctx context.Context, contentType ContentType, contentID ContentID, language Language) (map[Field]string, bool) {
	if c.cache == nil {
		return nil, false
	}
	val, err := c.cache.Get(ctx, overlayCacheKey(contentType, contentID, language)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Error(errors.Wrapf(err, "failed to read cached overlay for %v:%v", contentType, contentID), "language", language)
		}

		return nil, false
	}
	var overlay map[Field]string
	if err = msgpack.Unmarshal([]byte(val), &overlay); err != nil {
		log.Error(errors.Wrapf(err, "failed to decode cached overlay for %v:%v", contentType, contentID), "language", language)

		return nil, false
	}
	if overlay == nil {
		overlay = make(map[Field]string)
	}

	return overlay, true
}

func (c *client) cacheOverlay(ctx context.Context, contentType ContentType, contentID ContentID, language Language, overlay map[Field]string) {
	if c.cache == nil {
		return
	}
	bytes, err := msgpack.Marshal(overlay)
	if err != nil {
		log.Error(errors.Wrapf(err, "failed to encode overlay for %v:%v", contentType, contentID), "language", language)

		return
	}
	if err = c.cache.Set(ctx, overlayCacheKey(contentType, contentID, language), bytes, c.cfg.Translations.OverlayCacheTTL).Err(); err != nil {
		log.Error(errors.Wrapf(err, "failed to cache overlay for %v:%v", contentType, contentID), "language", language)
	}
}

func (c *client) invalidateOverlays(ctx context.Context, contentType ContentType, contentID ContentID) {
	if c.cache == nil {
		return
	}
	keys := make([]string, 0, len(c.cfg.Translations.Languages))
	for _, language := range c.cfg.Translations.Languages {
		if language == c.cfg.Translations.DefaultLanguage {
			continue
		}
		keys = append(keys, overlayCacheKey(contentType, contentID, language))
	}
	if len(keys) == 0 {
		return
	}
	if err := c.cache.Del(ctx, keys...).Err(); err != nil {
		log.Error(errors.Wrapf(err, "failed to invalidate cached overlays for %v:%v", contentType, contentID))
	}
}

func overlayCacheKey(contentType ContentType, contentID ContentID, language Language) string {
	return fmt.Sprintf("translations:%v:%v:%v", contentType, contentID, language)
}
