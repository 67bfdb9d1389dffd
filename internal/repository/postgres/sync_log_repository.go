// internal/repository/postgres/sync_log_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository"
)

type syncLogRepository struct {
	db *DB
}

func NewSyncLogStore(db *DB) repository.SyncLogStore {
	return &syncLogRepository{db: db}
}

func (r *syncLogRepository) Append(ctx context.Context, entry domain.SyncLogEntry) error {
	const query = `
		INSERT INTO sync_logs (id, shop_domain, scope, status, message, created_at)
		VALUES (:id, :shop_domain, :scope, :status, :message, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("error appending sync log: %w", err)
	}
	return nil
}

func (r *syncLogRepository) Resolve(ctx context.Context, id string, status domain.SyncStatus, message string) error {
	const query = `
		UPDATE sync_logs
		SET status = $2, message = $3
		WHERE id = $1 AND status = 'pending'
	`
	if _, err := r.db.ExecContext(ctx, query, id, status, message); err != nil {
		return fmt.Errorf("error resolving sync log %s: %w", id, err)
	}
	return nil
}

func (r *syncLogRepository) Recent(ctx context.Context, shop string, limit int) ([]domain.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, shop_domain, scope, status, message, created_at
		FROM sync_logs
		WHERE shop_domain = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var entries []domain.SyncLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, shop, limit); err != nil {
		return nil, fmt.Errorf("error querying sync logs: %w", err)
	}
	return entries, nil
}

func (r *syncLogRepository) LastSuccess(ctx context.Context, shop string, scope domain.SyncScope) (*domain.SyncLogEntry, error) {
	const query = `
		SELECT id, shop_domain, scope, status, message, created_at
		FROM sync_logs
		WHERE shop_domain = $1 AND scope = $2 AND status = 'success'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var entry domain.SyncLogEntry
	if err := r.db.GetContext(ctx, &entry, query, shop, scope); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying last successful sync log: %w", err)
	}
	return &entry, nil
}
