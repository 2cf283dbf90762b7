package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/infrastructure/persistence/sqlite"
)

// NotaCounterRepository implements port.NotaSequence on SQLite. One row per
// year; the sequence restarts at 1 every January.
type NotaCounterRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNotaCounterRepository creates a new nota counter repository
func NewNotaCounterRepository(db *sqlite.DB, logger *zap.Logger) port.NotaSequence {
	return &NotaCounterRepository{
		db:     db,
		logger: logger,
	}
}

// Next consumes and returns the next nota number for the year. The increment
// is a single statement, so concurrent submitters never see the same number.
func (r *NotaCounterRepository) Next(ctx context.Context, year int) (string, error) {
	query := `
		INSERT INTO nota_counters (year, sequence) VALUES (?, 1)
		ON CONFLICT(year) DO UPDATE SET sequence = sequence + 1
		RETURNING sequence
	`

	var seq int64
	if err := r.db.Executor(ctx).QueryRowContext(ctx, query, year).Scan(&seq); err != nil {
		r.logger.Error("Failed to advance nota counter", zap.Int("year", year), zap.Error(err))
		return "", fmt.Errorf("failed to advance nota counter: %w", err)
	}

	return formatNoNota(seq, year), nil
}

// Peek returns the number Next would produce, without consuming it.
func (r *NotaCounterRepository) Peek(ctx context.Context, year int) (string, error) {
	var seq int64
	err := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT sequence FROM nota_counters WHERE year = ?`, year).Scan(&seq)
	if err == sql.ErrNoRows {
		seq = 0
	} else if err != nil {
		r.logger.Error("Failed to read nota counter", zap.Int("year", year), zap.Error(err))
		return "", fmt.Errorf("failed to read nota counter: %w", err)
	}

	return formatNoNota(seq+1, year), nil
}

func formatNoNota(seq int64, year int) string {
	return fmt.Sprintf("%03d/KDNINV/%d", seq, year)
}

// Verify interface compliance
var _ port.NotaSequence = (*NotaCounterRepository)(nil)
