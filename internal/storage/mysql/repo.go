package mysql

import (
	"context"
	"database/sql"
	"errors"

	"ratecompass/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// Repo implements domain.ConfigStore and domain.SubmissionLog.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, name string) (string, error) {
	var v sql.NullString
	if err := r.db.QueryRowContext(ctx, getConfigSQL, name).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return v.String, nil
}

func (r *Repo) Set(ctx context.Context, name, value string) error {
	_, err := r.db.ExecContext(ctx, setConfigSQL, name, value)
	return err
}

func (r *Repo) RecordSubmission(ctx context.Context, s domain.Submission) error {
	_, err := r.db.ExecContext(ctx, upsertSubmissionSQL,
		s.OrderID,
		s.OrderNumber,
		string(s.Status),
		valInt(s.HTTPStatus),
		valStr(s.Error),
		valJSON(s.Payload),
	)
	return err
}

func (r *Repo) ListFailedSubmissions(ctx context.Context, limit int) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, listFailedSubmissionsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var (
			s          domain.Submission
			status     string
			httpStatus sql.NullInt64
			errText    sql.NullString
			payload    sql.RawBytes
		)
		if err := rows.Scan(&s.OrderID, &s.OrderNumber, &status, &httpStatus, &errText, &payload); err != nil {
			return nil, err
		}
		s.Status = domain.SubmissionStatus(status)
		if httpStatus.Valid {
			code := int(httpStatus.Int64)
			s.HTTPStatus = &code
		}
		if errText.Valid {
			e := errText.String
			s.Error = &e
		}
		if len(payload) > 0 {
			s.Payload = append([]byte(nil), payload...)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
