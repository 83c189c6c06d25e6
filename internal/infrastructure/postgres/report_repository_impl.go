package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketmapper/marketmapper/internal/domain/entity"
	"github.com/marketmapper/marketmapper/internal/domain/repository"
)

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) Create(ctx context.Context, rep *entity.Report) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reports (title, user_id, location)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, rep.Title, rep.UserID, rep.Location)

	return row.Scan(&rep.ID, &rep.CreatedAt)
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, user_id, location, created_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *ReportRepository) DeleteByIDAndUser(ctx context.Context, reportID, userID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM reports WHERE id = $1 AND user_id = $2
	`, reportID, userID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *ReportRepository) SearchByUser(ctx context.Context, userID, q string) ([]*entity.Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, user_id, location, created_at
		FROM reports
		WHERE user_id = $1 AND (title ILIKE '%' || $2 || '%' OR location ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
	`, userID, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReports(rows rowScanner) ([]*entity.Report, error) {
	out := make([]*entity.Report, 0, 16)
	for rows.Next() {
		rep := &entity.Report{}
		if err := rows.Scan(&rep.ID, &rep.Title, &rep.UserID, &rep.Location, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ repository.ReportRepository = (*ReportRepository)(nil)
