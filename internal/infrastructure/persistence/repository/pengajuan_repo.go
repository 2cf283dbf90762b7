package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/infrastructure/persistence/sqlite"
)

// pengajuanColumns is the scan order shared by every query in this file.
const pengajuanColumns = `
	id, no_nota, tanggal, divisi,
	rekening_sumber, bank_sumber, nama_sumber,
	rekening_penerima, bank_penerima, nama_penerima,
	items, grand_total, grand_total_terbilang, files, keterangan,
	status,
	submitted_by, submitted_by_username, submitted_by_full_name, submitted_at,
	approved_by, approved_by_username, approved_at,
	rejected_by, rejected_by_username, rejected_at, rejection_reason,
	finished_by, finished_by_username, finished_at,
	signature_user, signature_manager, signature_admin_finish,
	created_at, updated_at`

// PengajuanRepository implements port.PengajuanRepository on SQLite.
// Items and files are stored as JSON columns; the nota document always
// travels as a whole.
type PengajuanRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewPengajuanRepository creates a new pengajuan repository
func NewPengajuanRepository(db *sqlite.DB, logger *zap.Logger) port.PengajuanRepository {
	return &PengajuanRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new nota.
func (r *PengajuanRepository) Create(ctx context.Context, p *entity.Pengajuan) error {
	items, files, err := marshalDocs(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pengajuan (` + pengajuanColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		p.ID, p.NoNota, p.Tanggal, p.Divisi,
		p.RekeningSumber, p.BankSumber, p.NamaSumber,
		p.RekeningPenerima, p.BankPenerima, p.NamaPenerima,
		items, p.GrandTotal, p.GrandTotalTerbilang, files, p.Keterangan,
		p.Status,
		p.SubmittedBy, p.SubmittedByUsername, p.SubmittedByFullName, p.SubmittedAt,
		p.ApprovedBy, p.ApprovedByUsername, p.ApprovedAt,
		p.RejectedBy, p.RejectedByUsername, p.RejectedAt, p.RejectionReason,
		p.FinishedBy, p.FinishedByUsername, p.FinishedAt,
		p.SignatureUser, p.SignatureManager, p.SignatureAdminFinish,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create pengajuan", zap.String("no_nota", p.NoNota), zap.Error(err))
		return fmt.Errorf("failed to create pengajuan: %w", err)
	}

	return nil
}

// GetByID retrieves a nota by ID, returning (nil, nil) when absent.
func (r *PengajuanRepository) GetByID(ctx context.Context, id string) (*entity.Pengajuan, error) {
	query := `SELECT ` + pengajuanColumns + ` FROM pengajuan WHERE id = ?`

	p, err := scanPengajuan(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get pengajuan", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get pengajuan: %w", err)
	}
	return p, nil
}

// List retrieves notas newest-first, narrowed by the filter.
func (r *PengajuanRepository) List(ctx context.Context, filter port.PengajuanFilter) ([]*entity.Pengajuan, error) {
	query := `SELECT ` + pengajuanColumns + ` FROM pengajuan WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.SubmittedBy != 0 {
		query += " AND submitted_by = ?"
		args = append(args, filter.SubmittedBy)
	}
	if filter.From != "" {
		query += " AND tanggal >= ?"
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += " AND tanggal <= ?"
		args = append(args, filter.To)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list pengajuan", zap.Error(err))
		return nil, fmt.Errorf("failed to list pengajuan: %w", err)
	}
	defer rows.Close()

	var result []*entity.Pengajuan
	for rows.Next() {
		p, err := scanPengajuan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pengajuan: %w", err)
		}
		result = append(result, p)
	}

	return result, rows.Err()
}

// UpdateIfStatus persists p only while the stored status still equals
// expectedStatus, so the legality check and the write are atomic against
// concurrent transitions.
func (r *PengajuanRepository) UpdateIfStatus(ctx context.Context, p *entity.Pengajuan, expectedStatus string) error {
	items, files, err := marshalDocs(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE pengajuan SET
			divisi = ?,
			rekening_sumber = ?, bank_sumber = ?, nama_sumber = ?,
			rekening_penerima = ?, bank_penerima = ?, nama_penerima = ?,
			items = ?, grand_total = ?, grand_total_terbilang = ?, files = ?, keterangan = ?,
			status = ?,
			submitted_at = ?,
			approved_by = ?, approved_by_username = ?, approved_at = ?,
			rejected_by = ?, rejected_by_username = ?, rejected_at = ?, rejection_reason = ?,
			finished_by = ?, finished_by_username = ?, finished_at = ?,
			signature_user = ?, signature_manager = ?, signature_admin_finish = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		p.Divisi,
		p.RekeningSumber, p.BankSumber, p.NamaSumber,
		p.RekeningPenerima, p.BankPenerima, p.NamaPenerima,
		items, p.GrandTotal, p.GrandTotalTerbilang, files, p.Keterangan,
		p.Status,
		p.SubmittedAt,
		p.ApprovedBy, p.ApprovedByUsername, p.ApprovedAt,
		p.RejectedBy, p.RejectedByUsername, p.RejectedAt, p.RejectionReason,
		p.FinishedBy, p.FinishedByUsername, p.FinishedAt,
		p.SignatureUser, p.SignatureManager, p.SignatureAdminFinish,
		p.UpdatedAt,
		p.ID, expectedStatus,
	)
	if err != nil {
		r.logger.Error("Failed to update pengajuan", zap.String("id", p.ID), zap.Error(err))
		return fmt.Errorf("failed to update pengajuan: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// The guard missed: either the row is gone or another writer moved
		// the status first. Distinguish so the service can answer precisely.
		var exists int
		err := r.db.Executor(ctx).QueryRowContext(ctx,
			"SELECT 1 FROM pengajuan WHERE id = ?", p.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return entity.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check pengajuan: %w", err)
		}
		return entity.ErrStaleStatus
	}

	return nil
}

func marshalDocs(p *entity.Pengajuan) (items, files []byte, err error) {
	items, err = json.Marshal(p.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	if p.Files == nil {
		p.Files = []entity.FileAttachment{}
	}
	files, err = json.Marshal(p.Files)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal files: %w", err)
	}
	return items, files, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPengajuan(row rowScanner) (*entity.Pengajuan, error) {
	var p entity.Pengajuan
	var items, files []byte
	var divisi, keterangan, fullName sql.NullString
	var approvedBy, rejectedBy, finishedBy sql.NullInt64
	var approvedByUsername, rejectedByUsername, finishedByUsername sql.NullString
	var rejectionReason, sigUser, sigManager, sigAdmin sql.NullString
	var approvedAt, rejectedAt, finishedAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.NoNota, &p.Tanggal, &divisi,
		&p.RekeningSumber, &p.BankSumber, &p.NamaSumber,
		&p.RekeningPenerima, &p.BankPenerima, &p.NamaPenerima,
		&items, &p.GrandTotal, &p.GrandTotalTerbilang, &files, &keterangan,
		&p.Status,
		&p.SubmittedBy, &p.SubmittedByUsername, &fullName, &p.SubmittedAt,
		&approvedBy, &approvedByUsername, &approvedAt,
		&rejectedBy, &rejectedByUsername, &rejectedAt, &rejectionReason,
		&finishedBy, &finishedByUsername, &finishedAt,
		&sigUser, &sigManager, &sigAdmin,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &p.Files); err != nil {
			return nil, fmt.Errorf("failed to unmarshal files: %w", err)
		}
	}

	p.Divisi = divisi.String
	p.Keterangan = keterangan.String
	p.SubmittedByFullName = fullName.String
	p.ApprovedBy = nullInt(approvedBy)
	p.ApprovedByUsername = approvedByUsername.String
	p.ApprovedAt = nullTime(approvedAt)
	p.RejectedBy = nullInt(rejectedBy)
	p.RejectedByUsername = rejectedByUsername.String
	p.RejectedAt = nullTime(rejectedAt)
	p.RejectionReason = rejectionReason.String
	p.FinishedBy = nullInt(finishedBy)
	p.FinishedByUsername = finishedByUsername.String
	p.FinishedAt = nullTime(finishedAt)
	p.SignatureUser = sigUser.String
	p.SignatureManager = sigManager.String
	p.SignatureAdminFinish = sigAdmin.String

	return &p, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if v.Valid {
		return &v.Int64
	}
	return nil
}

func nullTime(v sql.NullTime) *time.Time {
	if v.Valid {
		return &v.Time
	}
	return nil
}

// Verify interface compliance
var _ port.PengajuanRepository = (*PengajuanRepository)(nil)
