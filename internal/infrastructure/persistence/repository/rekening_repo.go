package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/infrastructure/persistence/sqlite"
)

// RekeningRepository implements port.RekeningRepository on SQLite.
type RekeningRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewRekeningRepository creates a new rekening repository
func NewRekeningRepository(db *sqlite.DB, logger *zap.Logger) port.RekeningRepository {
	return &RekeningRepository{
		db:     db,
		logger: logger,
	}
}

// List returns every directory entry ordered by bank then account number.
func (r *RekeningRepository) List(ctx context.Context) ([]*entity.Rekening, error) {
	query := `
		SELECT id, no_rekening, bank, nama, created_by, created_at
		FROM rekening
		ORDER BY bank, no_rekening
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list rekening", zap.Error(err))
		return nil, fmt.Errorf("failed to list rekening: %w", err)
	}
	defer rows.Close()

	var result []*entity.Rekening
	for rows.Next() {
		var rk entity.Rekening
		if err := rows.Scan(&rk.ID, &rk.NoRekening, &rk.Bank, &rk.Nama, &rk.CreatedBy, &rk.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rekening: %w", err)
		}
		result = append(result, &rk)
	}

	return result, rows.Err()
}

// Upsert inserts the entry or, on a (no_rekening, bank) conflict, refreshes
// the holder name.
func (r *RekeningRepository) Upsert(ctx context.Context, rk *entity.Rekening) (*entity.Rekening, error) {
	query := `
		INSERT INTO rekening (no_rekening, bank, nama, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(no_rekening, bank) DO UPDATE SET nama = excluded.nama
		RETURNING id, no_rekening, bank, nama, created_by, created_at
	`

	var saved entity.Rekening
	err := r.db.Executor(ctx).QueryRowContext(ctx, query,
		rk.NoRekening, rk.Bank, rk.Nama, rk.CreatedBy, rk.CreatedAt,
	).Scan(&saved.ID, &saved.NoRekening, &saved.Bank, &saved.Nama, &saved.CreatedBy, &saved.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert rekening",
			zap.String("no_rekening", rk.NoRekening), zap.String("bank", rk.Bank), zap.Error(err))
		return nil, fmt.Errorf("failed to upsert rekening: %w", err)
	}

	return &saved, nil
}

// Update rewrites the row identified by (noRekening, bank). Returns
// (nil, nil) when no such row exists.
func (r *RekeningRepository) Update(ctx context.Context, noRekening, bank string, updated *entity.Rekening) (*entity.Rekening, error) {
	query := `
		UPDATE rekening
		SET no_rekening = ?, bank = ?, nama = ?
		WHERE no_rekening = ? AND bank = ?
		RETURNING id, no_rekening, bank, nama, created_by, created_at
	`

	var saved entity.Rekening
	err := r.db.Executor(ctx).QueryRowContext(ctx, query,
		updated.NoRekening, updated.Bank, updated.Nama, noRekening, bank,
	).Scan(&saved.ID, &saved.NoRekening, &saved.Bank, &saved.Nama, &saved.CreatedBy, &saved.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to update rekening",
			zap.String("no_rekening", noRekening), zap.String("bank", bank), zap.Error(err))
		return nil, fmt.Errorf("failed to update rekening: %w", err)
	}

	return &saved, nil
}

// Delete removes the row identified by (noRekening, bank).
func (r *RekeningRepository) Delete(ctx context.Context, noRekening, bank string) error {
	query := `DELETE FROM rekening WHERE no_rekening = ? AND bank = ?`
	_, err := r.db.Executor(ctx).ExecContext(ctx, query, noRekening, bank)
	if err != nil {
		r.logger.Error("Failed to delete rekening",
			zap.String("no_rekening", noRekening), zap.String("bank", bank), zap.Error(err))
		return fmt.Errorf("failed to delete rekening: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.RekeningRepository = (*RekeningRepository)(nil)
