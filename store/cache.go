package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/agriquest/log"
	"github.com/mbolis/agriquest/model"
)

// CachedQuestionnaires reads the last saved questionnaire list. Rows that no
// longer decode are logged and skipped.
func (s *Store) CachedQuestionnaires(ctx context.Context) ([]model.Questionnaire, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data
		FROM questionnaire_cache
		ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "reading questionnaire cache")
	}
	defer rows.Close()

	cached := []model.Questionnaire{}
	for rows.Next() {
		var (
			id   int
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, errors.Wrap(err, "scanning questionnaire cache")
		}

		var q model.Questionnaire
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			log.Warnf("store.cache.decode: skipping questionnaire %d: %s", id, err)
			continue
		}
		q.ID = id
		cached = append(cached, q)
	}
	return cached, rows.Err()
}

// CacheQuestionnaires replaces the cache with list, the complete list the
// backend answered. Entries without an id cannot be keyed and are left out.
func (s *Store) CacheQuestionnaires(ctx context.Context, list []model.Questionnaire) error {
	return s.writeCache(ctx, list, true)
}

// RefreshQuestionnaires updates the cached copies of the entries in list,
// one page of the backend list, and leaves the others alone.
func (s *Store) RefreshQuestionnaires(ctx context.Context, list []model.Questionnaire) error {
	return s.writeCache(ctx, list, false)
}

// EvictQuestionnaire drops a deleted questionnaire from the cache.
func (s *Store) EvictQuestionnaire(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM questionnaire_cache WHERE id = ?", id)
	return errors.Wrapf(err, "evicting questionnaire %d", id)
}

func (s *Store) writeCache(ctx context.Context, list []model.Questionnaire, replace bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin cache tx")
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM questionnaire_cache"); err != nil {
			return errors.Wrap(err, "clearing questionnaire cache")
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questionnaire_cache (id, data, cached_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, cached_at = excluded.cached_at`)
	if err != nil {
		return errors.Wrap(err, "preparing cache insert")
	}
	defer stmt.Close()

	now := time.Now()
	for _, q := range list {
		if q.ID == 0 {
			continue
		}
		data, err := json.Marshal(q)
		if err != nil {
			return errors.Wrapf(err, "encoding questionnaire %d", q.ID)
		}
		if _, err := stmt.ExecContext(ctx, q.ID, string(data), now); err != nil {
			return errors.Wrapf(err, "caching questionnaire %d", q.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "commit cache tx")
}
