package repository

import (
	"context"

	"github.com/dkrylova/aftersale/internal/domain"
)

type OperationLogRepository interface {
	Append(ctx context.Context, entry *domain.OperationLogEntry) error
	ListByApplication(ctx context.Context, applicationID int64) ([]domain.OperationLogEntry, error)
}

type PGOperationLogRepository struct {
	db Querier
}

func NewOperationLogRepository(db Querier) OperationLogRepository {
	return &PGOperationLogRepository{db: db}
}

func (r *PGOperationLogRepository) Append(ctx context.Context, entry *domain.OperationLogEntry) error {
	return r.db.QueryRow(ctx, `INSERT INTO operation_logs (application_id, operation, content_before, content_after, actor_id, actor_name, remark)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		entry.ApplicationID, entry.Operation, entry.Before, entry.After, entry.ActorID, entry.ActorName, entry.Remark).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *PGOperationLogRepository) ListByApplication(ctx context.Context, applicationID int64) ([]domain.OperationLogEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, application_id, operation, content_before, content_after, actor_id, actor_name, remark, created_at
		FROM operation_logs WHERE application_id=$1 ORDER BY id`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.OperationLogEntry, 0)
	for rows.Next() {
		var e domain.OperationLogEntry
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.Operation, &e.Before, &e.After, &e.ActorID, &e.ActorName, &e.Remark, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ OperationLogRepository = (*PGOperationLogRepository)(nil)
