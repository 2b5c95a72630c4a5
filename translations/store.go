// SPDX-License-Identifier: quiltery License 1.0

package translations

import (
	"context"

	"github.com/pkg/errors"

	"github.com/quiltery/lingo/connectors/storage"
	"github.com/quiltery/lingo/time"
)

func NewStore(db *storage.DB, defaultLanguage Language) Store {
	return &pgStore{db: db, defaultLanguage: defaultLanguage}
}

func (s *pgStore) Upsert(ctx context.Context, record *TranslationRecord) error {
	if record.UpdatedAt == nil {
		record.UpdatedAt = time.Now()
	}
	sql := `INSERT INTO translations(updated_at, content_type, content_id, field, language, source_language, translated_text)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (content_type, content_id, field, language)
			DO UPDATE
				  SET updated_at = EXCLUDED.updated_at,
					  source_language = EXCLUDED.source_language,
					  translated_text = EXCLUDED.translated_text`
	_, err := storage.Exec(ctx, s.db, sql,
		record.UpdatedAt.Time, record.ContentType, record.ContentID, record.Field, record.Language, record.SourceLanguage, record.TranslatedText)

	return errors.Wrapf(err, "failed to upsert translation record %#v", record)
}

func (s *pgStore) GetOne(ctx context.Context, contentType ContentType, contentID ContentID, language Language) (map[Field]string, error) {
	if language == s.defaultLanguage || contentID == "" {
		return make(map[Field]string), nil
	}
	sql := `SELECT field, translated_text
			  FROM translations
			 WHERE content_type = $1
			   AND content_id = $2
			   AND language = $3`
	records, err := storage.Select[TranslationRecord](ctx, s.db, sql, contentType, contentID, language)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to select translations for %v:%v, language %v", contentType, contentID, language)
	}
	fields := make(map[Field]string, len(records))
	for _, record := range records {
		fields[record.Field] = record.TranslatedText
	}

	return fields, nil
}

func (s *pgStore) GetMany(ctx context.Context, contentType ContentType, contentIDs []ContentID, language Language) (map[ContentID]map[Field]string, error) { //nolint:lll // .
	if language == s.defaultLanguage || len(contentIDs) == 0 {
		return make(map[ContentID]map[Field]string), nil
	}
	sql := `SELECT content_id, field, translated_text
			  FROM translations
			 WHERE content_type = $1
			   AND content_id = ANY($2)
			   AND language = $3`
	records, err := storage.Select[TranslationRecord](ctx, s.db, sql, contentType, contentIDs, language)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to select translations for %v:%v, language %v", contentType, contentIDs, language)
	}
	result := make(map[ContentID]map[Field]string, len(contentIDs))
	for _, record := range records {
		if result[record.ContentID] == nil {
			result[record.ContentID] = make(map[Field]string)
		}
		result[record.ContentID][record.Field] = record.TranslatedText
	}

	return result, nil
}

func (s *pgStore) Erase(ctx context.Context, contentType ContentType, contentID ContentID) error {
	_, err := storage.Exec(ctx, s.db, `DELETE FROM translations WHERE content_type = $1 AND content_id = $2`, contentType, contentID)

	return errors.Wrapf(err, "failed to erase translations for %v:%v", contentType, contentID)
}
