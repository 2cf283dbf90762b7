package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/domain/event"
	"github.com/kdninv/nota-api/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// MaxAttachments is the per-nota attachment limit.
const MaxAttachments = 3

// SubmitInput carries everything a submitter provides when creating a nota.
// Item totals and the grand total are derived server-side, whatever the
// caller sent.
type SubmitInput struct {
	Tanggal          string
	Divisi           string
	RekeningSumber   string
	BankSumber       string
	NamaSumber       string
	RekeningPenerima string
	BankPenerima     string
	NamaPenerima     string
	Items            []entity.PengajuanItem
	Files            []entity.FileAttachment
	Keterangan       string
	SignatureUser    string
}

// ResubmitInput is the full replacement payload for an edit-resubmission.
type ResubmitInput struct {
	Divisi           string
	RekeningSumber   string
	BankSumber       string
	NamaSumber       string
	RekeningPenerima string
	BankPenerima     string
	NamaPenerima     string
	Items            []entity.PengajuanItem
	Files            []entity.FileAttachment
	Keterangan       string
}

// ListFilter narrows the nota listing exposed to handlers.
type ListFilter struct {
	Status string
	From   string
	To     string
	Mine   bool
}

// PengajuanService runs the nota approval lifecycle.
type PengajuanService interface {
	Submit(ctx context.Context, actor entity.Session, in SubmitInput) (*entity.Pengajuan, error)
	Get(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error)
	List(ctx context.Context, actor entity.Session, filter ListFilter) ([]*entity.Pengajuan, error)
	Approve(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error)
	Reject(ctx context.Context, actor entity.Session, id, reason string) (*entity.Pengajuan, error)
	Finish(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error)
	Resubmit(ctx context.Context, actor entity.Session, id string, in ResubmitInput) (*entity.Pengajuan, error)
	PeekNotaNumber(ctx context.Context) (string, error)
}

type pengajuanServiceImpl struct {
	repo      port.PengajuanRepository
	userRepo  port.UserRepository
	sequence  port.NotaSequence
	txManager port.TransactionManager
	notifier  port.Notifier
	logger    Logger
}

// NewPengajuanService creates a new PengajuanService
func NewPengajuanService(
	repo port.PengajuanRepository,
	userRepo port.UserRepository,
	sequence port.NotaSequence,
	txManager port.TransactionManager,
	notifier port.Notifier,
	logger Logger,
) PengajuanService {
	return &pengajuanServiceImpl{
		repo:      repo,
		userRepo:  userRepo,
		sequence:  sequence,
		txManager: txManager,
		notifier:  notifier,
		logger:    logger,
	}
}

// Submit creates a new nota in pending state.
func (s *pengajuanServiceImpl) Submit(ctx context.Context, actor entity.Session, in SubmitInput) (*entity.Pengajuan, error) {
	if actor.Role == entity.RoleManager {
		return nil, fmt.Errorf("%w: manager tidak bisa membuat pengajuan", entity.ErrForbidden)
	}
	if err := entity.ValidateItems(in.Items); err != nil {
		return nil, err
	}
	if len(in.Files) > MaxAttachments {
		return nil, fmt.Errorf("%w: maksimum %d file lampiran", entity.ErrValidation, MaxAttachments)
	}

	now := time.Now()
	fullName := ""
	if u, err := s.userRepo.GetByID(ctx, actor.UserID); err == nil && u != nil {
		fullName = u.FullName
	}

	p := &entity.Pengajuan{
		ID:                  uuid.NewString(),
		Tanggal:             in.Tanggal,
		Divisi:              in.Divisi,
		RekeningSumber:      in.RekeningSumber,
		BankSumber:          in.BankSumber,
		NamaSumber:          in.NamaSumber,
		RekeningPenerima:    in.RekeningPenerima,
		BankPenerima:        in.BankPenerima,
		NamaPenerima:        in.NamaPenerima,
		Items:               in.Items,
		Files:               in.Files,
		Keterangan:          in.Keterangan,
		Status:              entity.StatusPending,
		SubmittedBy:         actor.UserID,
		SubmittedByUsername: actor.Username,
		SubmittedByFullName: fullName,
		SubmittedAt:         now,
		SignatureUser:       in.SignatureUser,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	p.RecomputeTotals()

	// The number draw and the insert commit together; a failed insert must
	// not leave a gap in the year's sequence.
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		noNota, err := s.sequence.Next(ctx, now.Year())
		if err != nil {
			return fmt.Errorf("generate no nota: %w", err)
		}
		p.NoNota = noNota
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		s.logger.Error("Failed to create pengajuan", "error", err)
		return nil, fmt.Errorf("create pengajuan: %w", err)
	}

	displayName := fullName
	if displayName == "" {
		displayName = actor.Username
	}
	s.notifier.Publish(event.ForRoles(event.TypeNotaSubmitted, p.ID, p.NoNota,
		[]string{entity.RoleManager}, entity.PushPayload{
			Title: "📋 Pengajuan Nota Baru",
			Body:  fmt.Sprintf("%s mengajukan nota %s", displayName, p.NoNota),
			URL:   "/admin",
		}))

	s.logger.Info("Pengajuan created", "id", p.ID, "no_nota", p.NoNota, "grand_total", p.GrandTotal)
	return p, nil
}

// Get retrieves a nota. Plain users only see their own.
func (s *pengajuanServiceImpl) Get(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == entity.RoleUser && p.SubmittedBy != actor.UserID {
		return nil, fmt.Errorf("%w: bukan pengajuan anda", entity.ErrForbidden)
	}
	return p, nil
}

// List retrieves notas newest-first. Users are always scoped to their own
// submissions; staff see everything unless they ask for "mine".
func (s *pengajuanServiceImpl) List(ctx context.Context, actor entity.Session, filter ListFilter) ([]*entity.Pengajuan, error) {
	f := port.PengajuanFilter{From: filter.From, To: filter.To}
	if filter.Status != "" && filter.Status != "all" {
		f.Status = filter.Status
	}
	if actor.Role == entity.RoleUser || filter.Mine {
		f.SubmittedBy = actor.UserID
	}
	return s.repo.List(ctx, f)
}

// Approve moves a pending nota to approved. Manager only.
func (s *pengajuanServiceImpl) Approve(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error) {
	p, err := s.authorize(ctx, actor, id, workflow.TriggerApprove)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := p.Status
	p.Status = string(workflow.StateApproved)
	p.ApprovedBy = &actor.UserID
	p.ApprovedByUsername = actor.Username
	p.ApprovedAt = &now
	p.SignatureManager = entity.Signature(actor.Username, now)
	clearRejection(p)
	p.UpdatedAt = now

	if err := s.persist(ctx, p, from); err != nil {
		return nil, err
	}

	s.notifier.Publish(event.ForUser(event.TypeNotaApproved, p.ID, p.NoNota, p.SubmittedBy,
		entity.PushPayload{
			Title: "✅ Pengajuan Disetujui",
			Body:  fmt.Sprintf("Nota %s disetujui oleh %s", p.NoNota, actor.Username),
			URL:   "/history",
		}))

	s.logger.Info("Pengajuan approved", "id", p.ID, "no_nota", p.NoNota, "by", actor.Username)
	return p, nil
}

// Reject moves a pending nota to rejected. Manager only, reason required.
// The manager signature is deliberately not stamped on a rejection.
func (s *pengajuanServiceImpl) Reject(ctx context.Context, actor entity.Session, id, reason string) (*entity.Pengajuan, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: alasan penolakan wajib diisi", entity.ErrValidation)
	}

	p, err := s.authorize(ctx, actor, id, workflow.TriggerReject)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := p.Status
	p.Status = string(workflow.StateRejected)
	p.RejectedBy = &actor.UserID
	p.RejectedByUsername = actor.Username
	p.RejectedAt = &now
	p.RejectionReason = reason
	p.UpdatedAt = now

	if err := s.persist(ctx, p, from); err != nil {
		return nil, err
	}

	s.notifier.Publish(event.ForUser(event.TypeNotaRejected, p.ID, p.NoNota, p.SubmittedBy,
		entity.PushPayload{
			Title: "❌ Pengajuan Ditolak",
			Body:  fmt.Sprintf("Nota %s ditolak: %s", p.NoNota, reason),
			URL:   "/history",
		}))

	s.logger.Info("Pengajuan rejected", "id", p.ID, "no_nota", p.NoNota, "by", actor.Username)
	return p, nil
}

// Finish marks an approved nota as financially completed. Admin only.
func (s *pengajuanServiceImpl) Finish(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error) {
	p, err := s.authorize(ctx, actor, id, workflow.TriggerFinish)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := p.Status
	p.Status = string(workflow.StateFinished)
	p.FinishedBy = &actor.UserID
	p.FinishedByUsername = actor.Username
	p.FinishedAt = &now
	p.SignatureAdminFinish = entity.Signature(actor.Username, now)
	p.UpdatedAt = now

	if err := s.persist(ctx, p, from); err != nil {
		return nil, err
	}

	s.notifier.Publish(event.ForUser(event.TypeNotaFinished, p.ID, p.NoNota, p.SubmittedBy,
		entity.PushPayload{
			Title: "🏁 Pengajuan Selesai",
			Body:  fmt.Sprintf("Nota %s telah diselesaikan oleh admin", p.NoNota),
			URL:   "/history",
		}))

	s.logger.Info("Pengajuan finished", "id", p.ID, "no_nota", p.NoNota, "by", actor.Username)
	return p, nil
}

// Resubmit replaces a pending or rejected nota's content and returns it to
// pending. Only the original submitter may do this, regardless of role.
func (s *pengajuanServiceImpl) Resubmit(ctx context.Context, actor entity.Session, id string, in ResubmitInput) (*entity.Pengajuan, error) {
	if err := entity.ValidateItems(in.Items); err != nil {
		return nil, err
	}
	if len(in.Files) > MaxAttachments {
		return nil, fmt.Errorf("%w: maksimum %d file lampiran", entity.ErrValidation, MaxAttachments)
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SubmittedBy != actor.UserID {
		return nil, fmt.Errorf("%w: hanya pengaju yang bisa mengubah pengajuan", entity.ErrForbidden)
	}

	machine, err := workflow.Lifecycle(workflow.State(p.Status))
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(workflow.TriggerResubmit); err != nil {
		return nil, err
	}

	now := time.Now()
	from := p.Status
	p.Status = string(machine.State())
	p.Divisi = in.Divisi
	p.RekeningSumber = in.RekeningSumber
	p.BankSumber = in.BankSumber
	p.NamaSumber = in.NamaSumber
	p.RekeningPenerima = in.RekeningPenerima
	p.BankPenerima = in.BankPenerima
	p.NamaPenerima = in.NamaPenerima
	p.Items = in.Items
	p.Files = in.Files
	p.Keterangan = in.Keterangan
	p.RecomputeTotals()
	clearRejection(p)
	clearApproval(p)
	p.SubmittedAt = now
	p.UpdatedAt = now

	if err := s.persist(ctx, p, from); err != nil {
		return nil, err
	}

	s.notifier.Publish(event.ForRoles(event.TypeNotaResubmitted, p.ID, p.NoNota,
		[]string{entity.RoleManager}, entity.PushPayload{
			Title: "🔄 Pengajuan Diperbarui",
			Body:  fmt.Sprintf("%s memperbarui nota %s", actor.Username, p.NoNota),
			URL:   "/admin",
		}))

	s.logger.Info("Pengajuan resubmitted", "id", p.ID, "no_nota", p.NoNota, "grand_total", p.GrandTotal)
	return p, nil
}

// PeekNotaNumber previews the next nota number for the current year.
func (s *pengajuanServiceImpl) PeekNotaNumber(ctx context.Context) (string, error) {
	return s.sequence.Peek(ctx, time.Now().Year())
}

// load fetches a nota and maps absence to ErrNotFound.
func (s *pengajuanServiceImpl) load(ctx context.Context, id string) (*entity.Pengajuan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get pengajuan", "error", err, "id", id)
		return nil, fmt.Errorf("get pengajuan: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: pengajuan %s", entity.ErrNotFound, id)
	}
	return p, nil
}

// authorize loads the nota and checks both the actor's role and the
// transition's legality from the current status. Role is checked first so a
// user probing a finished nota still gets a 403, not a state hint.
func (s *pengajuanServiceImpl) authorize(ctx context.Context, actor entity.Session, id string, trigger workflow.Trigger) (*entity.Pengajuan, error) {
	role, ok := workflow.RequiredRole(trigger)
	if ok && actor.Role != role {
		return nil, fmt.Errorf("%w: hanya %s yang bisa melakukan aksi ini", entity.ErrForbidden, role)
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.Lifecycle(workflow.State(p.Status))
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(trigger); err != nil {
		return nil, err
	}
	return p, nil
}

// persist applies the mutation under the status guard; a lost race surfaces
// as an invalid transition, same as a stale legality check.
func (s *pengajuanServiceImpl) persist(ctx context.Context, p *entity.Pengajuan, expectedStatus string) error {
	if err := s.repo.UpdateIfStatus(ctx, p, expectedStatus); err != nil {
		if errors.Is(err, entity.ErrStaleStatus) {
			return fmt.Errorf("%w: status pengajuan sudah berubah", workflow.ErrInvalidTransition)
		}
		s.logger.Error("Failed to update pengajuan", "error", err, "id", p.ID)
		return fmt.Errorf("update pengajuan: %w", err)
	}
	return nil
}

func clearRejection(p *entity.Pengajuan) {
	p.RejectedBy = nil
	p.RejectedByUsername = ""
	p.RejectedAt = nil
	p.RejectionReason = ""
}

func clearApproval(p *entity.Pengajuan) {
	p.ApprovedBy = nil
	p.ApprovedByUsername = ""
	p.ApprovedAt = nil
	p.SignatureManager = ""
}
