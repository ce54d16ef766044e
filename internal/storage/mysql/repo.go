package mysql

import (
	"context"
	"database/sql"
	"strings"

	"review_radar/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
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

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) InsertAnalysis(ctx context.Context, a domain.Analysis) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertAnalysisSQL,
		a.Target,
		valStr(a.Competitor),
		a.Region,
		a.Language,
		a.TargetCount,
		a.Status,
		a.Report,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) InsertReviews(ctx context.Context, rs []domain.StoredReview) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*8) // 8 params per row
	for _, rv := range rs {
		// Columns (from insertReviewsPrefix):
		// (analysis_id, entity, position, rating, author, `text`, review_date, raw)
		values = append(values, "(?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.AnalysisID,
			rv.Entity,
			rv.Position,
			valF64(rv.Rating),
			valStr(rv.Author),
			rv.Text,
			valStr(rv.Date),
			valJSON(rv.RawJSON),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogLookupMiss(ctx context.Context, query string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, query, status, reason)
	return err
}

func (r *Repo) GetAnalysis(ctx context.Context, id int64) (domain.Analysis, error) {
	row := r.db.QueryRowContext(ctx, getAnalysisSQL, id)

	var a domain.Analysis
	var competitor sql.NullString
	if err := row.Scan(
		&a.ID,
		&a.Target,
		&competitor,
		&a.Region,
		&a.Language,
		&a.TargetCount,
		&a.Status,
		&a.Report,
		&a.CreatedAt,
	); err != nil {
		return domain.Analysis{}, err
	}
	if competitor.Valid {
		c := competitor.String
		a.Competitor = &c
	}
	return a, nil
}

func (r *Repo) ListAnalysisReviews(ctx context.Context, id int64) ([]domain.StoredReview, error) {
	rows, err := r.db.QueryContext(ctx, listAnalysisReviewsSQL, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StoredReview
	for rows.Next() {
		var (
			rv     domain.StoredReview
			rating sql.NullFloat64
			author sql.NullString
			date   sql.NullString
			raw    sql.NullString
		)
		if err := rows.Scan(&rv.AnalysisID, &rv.Entity, &rv.Position, &rating, &author, &rv.Text, &date, &raw); err != nil {
			return nil, err
		}
		if rating.Valid {
			f := rating.Float64
			rv.Rating = &f
		}
		if author.Valid {
			s := author.String
			rv.Author = &s
		}
		if date.Valid {
			s := date.String
			rv.Date = &s
		}
		if raw.Valid {
			rv.RawJSON = []byte(raw.String)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
