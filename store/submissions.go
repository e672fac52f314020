package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/agriquest/model"
)

// SaveSubmission stores a set of answers captured in the form preview.
func (s *Store) SaveSubmission(ctx context.Context, sub model.Submission) (int, error) {
	if sub.Time.IsZero() {
		sub.Time = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin submission tx")
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO submission (questionnaire_id, time) VALUES (?, ?)
		RETURNING id`,
		sub.QuestionnaireID,
		sub.Time,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "inserting submission")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO submission_value (submission_id, key, value)
		VALUES (?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "preparing submission values")
	}
	defer stmt.Close()

	for key, value := range sub.Values {
		valueJson, err := json.Marshal(value)
		if err != nil {
			return 0, errors.Wrapf(err, "encoding value of %s", key)
		}
		if _, err := stmt.ExecContext(ctx, id, key, string(valueJson)); err != nil {
			return 0, errors.Wrapf(err, "inserting value of %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit submission tx")
	}
	return id, nil
}

// Submissions lists the preview submissions of a questionnaire, oldest first.
func (s *Store) Submissions(ctx context.Context, questionnaireID int) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.time, v.key, v.value
		FROM submission s
		LEFT OUTER JOIN submission_value v ON (s.id = v.submission_id)
		WHERE s.questionnaire_id = ?
		ORDER BY s.id`,
		questionnaireID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var (
			sub   model.Submission
			key   sql.NullString
			value sql.NullString
		)
		if err := rows.Scan(&sub.ID, &sub.Time, &key, &value); err != nil {
			return nil, errors.Wrap(err, "scanning submission")
		}

		last := len(submissions) - 1
		if last < 0 || submissions[last].ID != sub.ID {
			sub.QuestionnaireID = questionnaireID
			sub.Values = map[string]any{}
			submissions = append(submissions, sub)
			last++
		}
		if !key.Valid {
			continue
		}

		var v any
		if err := json.Unmarshal([]byte(value.String), &v); err != nil {
			return nil, errors.Wrapf(err, "decoding value of %s", key.String)
		}
		submissions[last].Values[key.String] = v
	}
	return submissions, rows.Err()
}
