package repository

import (
	"context"

	"github.com/marketmapper/marketmapper/internal/domain/entity"
)

// ReportRepository defines the interface for report persistence.
type ReportRepository interface {
	Create(ctx context.Context, r *entity.Report) error
	// ListByUser returns the user's reports ordered by creation time descending.
	ListByUser(ctx context.Context, userID string) ([]*entity.Report, error)
	// DeleteByIDAndUser deletes the report only when it belongs to userID and
	// returns whether a row was actually removed.
	DeleteByIDAndUser(ctx context.Context, reportID, userID string) (bool, error)
	// SearchByUser filters the user's reports by a case-insensitive match on
	// title or location.
	SearchByUser(ctx context.Context, userID, q string) ([]*entity.Report, error)
}
