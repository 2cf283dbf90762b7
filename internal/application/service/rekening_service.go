package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// RekeningService manages the shared bank account directory. Any
// authenticated user may read and add entries; editing and deleting is
// staff-only.
type RekeningService interface {
	List(ctx context.Context) ([]*entity.Rekening, error)
	Save(ctx context.Context, actor entity.Session, noRekening, bank, nama string) (*entity.Rekening, error)
	Update(ctx context.Context, actor entity.Session, noRekening, bank, nama, newNoRekening, newBank string) (*entity.Rekening, error)
	Delete(ctx context.Context, actor entity.Session, noRekening, bank string) error
}

type rekeningServiceImpl struct {
	repo   port.RekeningRepository
	logger Logger
}

// NewRekeningService creates a new RekeningService
func NewRekeningService(repo port.RekeningRepository, logger Logger) RekeningService {
	return &rekeningServiceImpl{repo: repo, logger: logger}
}

func (s *rekeningServiceImpl) List(ctx context.Context) ([]*entity.Rekening, error) {
	return s.repo.List(ctx)
}

// Save inserts a directory entry, refreshing the holder name when the
// (no_rekening, bank) pair already exists.
func (s *rekeningServiceImpl) Save(ctx context.Context, actor entity.Session, noRekening, bank, nama string) (*entity.Rekening, error) {
	noRekening = strings.TrimSpace(noRekening)
	bank = strings.TrimSpace(bank)
	nama = strings.TrimSpace(nama)
	if noRekening == "" {
		return nil, fmt.Errorf("%w: nomor rekening wajib diisi", entity.ErrValidation)
	}
	if bank == "" {
		return nil, fmt.Errorf("%w: bank wajib diisi", entity.ErrValidation)
	}
	if nama == "" {
		return nil, fmt.Errorf("%w: nama wajib diisi", entity.ErrValidation)
	}

	saved, err := s.repo.Upsert(ctx, &entity.Rekening{
		NoRekening: noRekening,
		Bank:       bank,
		Nama:       nama,
		CreatedBy:  actor.UserID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		s.logger.Error("Failed to save rekening", "error", err, "no_rekening", noRekening, "bank", bank)
		return nil, fmt.Errorf("save rekening: %w", err)
	}
	return saved, nil
}

func (s *rekeningServiceImpl) Update(ctx context.Context, actor entity.Session, noRekening, bank, nama, newNoRekening, newBank string) (*entity.Rekening, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: khusus admin dan manager", entity.ErrForbidden)
	}
	if noRekening == "" || bank == "" {
		return nil, fmt.Errorf("%w: data tidak lengkap", entity.ErrValidation)
	}
	nama = strings.TrimSpace(nama)
	if nama == "" {
		return nil, fmt.Errorf("%w: nama wajib diisi", entity.ErrValidation)
	}

	if newNoRekening == "" {
		newNoRekening = noRekening
	}
	if newBank == "" {
		newBank = bank
	}

	updated, err := s.repo.Update(ctx, noRekening, bank, &entity.Rekening{
		NoRekening: strings.TrimSpace(newNoRekening),
		Bank:       strings.TrimSpace(newBank),
		Nama:       nama,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: rekening", entity.ErrNotFound)
	}
	return updated, nil
}

func (s *rekeningServiceImpl) Delete(ctx context.Context, actor entity.Session, noRekening, bank string) error {
	if !actor.IsStaff() {
		return fmt.Errorf("%w: khusus admin dan manager", entity.ErrForbidden)
	}
	if noRekening == "" || bank == "" {
		return fmt.Errorf("%w: data tidak lengkap", entity.ErrValidation)
	}
	return s.repo.Delete(ctx, noRekening, bank)
}
