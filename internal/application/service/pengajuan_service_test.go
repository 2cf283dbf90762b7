package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/domain/event"
	"github.com/kdninv/nota-api/internal/domain/workflow"
)

// --- mocks ---

type mockPengajuanRepo struct {
	createFunc         func(ctx context.Context, p *entity.Pengajuan) error
	getByIDFunc        func(ctx context.Context, id string) (*entity.Pengajuan, error)
	listFunc           func(ctx context.Context, filter port.PengajuanFilter) ([]*entity.Pengajuan, error)
	updateIfStatusFunc func(ctx context.Context, p *entity.Pengajuan, expectedStatus string) error
}

func (m *mockPengajuanRepo) Create(ctx context.Context, p *entity.Pengajuan) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	return nil
}

func (m *mockPengajuanRepo) GetByID(ctx context.Context, id string) (*entity.Pengajuan, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPengajuanRepo) List(ctx context.Context, filter port.PengajuanFilter) ([]*entity.Pengajuan, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockPengajuanRepo) UpdateIfStatus(ctx context.Context, p *entity.Pengajuan, expectedStatus string) error {
	if m.updateIfStatusFunc != nil {
		return m.updateIfStatusFunc(ctx, p, expectedStatus)
	}
	return nil
}

type mockUserRepo struct {
	getByIDFunc        func(ctx context.Context, id int64) (*entity.User, error)
	getByUsernameFunc  func(ctx context.Context, username string) (*entity.User, error)
	createFunc         func(ctx context.Context, u *entity.User) error
	listFunc           func(ctx context.Context, excludeID int64) ([]*entity.User, error)
	deleteFunc         func(ctx context.Context, id int64) error
	updatePasswordFunc func(ctx context.Context, id int64, hashed string) error
	updateFullNameFunc func(ctx context.Context, id int64, fullName string) error
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, excludeID int64) ([]*entity.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, excludeID)
	}
	return nil, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, id, hashed)
	}
	return nil
}

func (m *mockUserRepo) UpdateFullName(ctx context.Context, id int64, fullName string) error {
	if m.updateFullNameFunc != nil {
		return m.updateFullNameFunc(ctx, id, fullName)
	}
	return nil
}

type mockSequence struct {
	nextFunc func(ctx context.Context, year int) (string, error)
	peekFunc func(ctx context.Context, year int) (string, error)
}

func (m *mockSequence) Next(ctx context.Context, year int) (string, error) {
	if m.nextFunc != nil {
		return m.nextFunc(ctx, year)
	}
	return "001/KDNINV/2026", nil
}

func (m *mockSequence) Peek(ctx context.Context, year int) (string, error) {
	if m.peekFunc != nil {
		return m.peekFunc(ctx, year)
	}
	return "001/KDNINV/2026", nil
}

type mockNotifier struct {
	published []*event.Event
}

func (m *mockNotifier) Publish(e *event.Event) {
	m.published = append(m.published, e)
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// --- helpers ---

func newTestService(repo *mockPengajuanRepo, users *mockUserRepo, seq *mockSequence, notifier *mockNotifier) PengajuanService {
	if users == nil {
		users = &mockUserRepo{}
	}
	if seq == nil {
		seq = &mockSequence{}
	}
	if notifier == nil {
		notifier = &mockNotifier{}
	}
	return NewPengajuanService(repo, users, seq, &mockTxManager{}, notifier, &mockLogger{})
}

func userSession() entity.Session {
	return entity.Session{UserID: 7, Username: "budi", Role: entity.RoleUser}
}

func managerSession() entity.Session {
	return entity.Session{UserID: 1, Username: "manajer", Role: entity.RoleManager}
}

func adminSession() entity.Session {
	return entity.Session{UserID: 2, Username: "admin", Role: entity.RoleAdmin}
}

func pendingNota(submittedBy int64) *entity.Pengajuan {
	p := &entity.Pengajuan{
		ID:                  "nota-1",
		NoNota:              "001/KDNINV/2026",
		Tanggal:             "2026-08-28",
		Items:               []entity.PengajuanItem{{NamaBarang: "Kertas A4", Jumlah: 2, Satuan: "rim", Harga: 50000}},
		Status:              entity.StatusPending,
		SubmittedBy:         submittedBy,
		SubmittedByUsername: "budi",
		SignatureUser:       "budi | 28/08/2026 08:00:00",
	}
	p.RecomputeTotals()
	return p
}

// --- Submit ---

func TestSubmitCreatesPendingNotaWithDerivedTotals(t *testing.T) {
	var created *entity.Pengajuan
	repo := &mockPengajuanRepo{
		createFunc: func(ctx context.Context, p *entity.Pengajuan) error {
			created = p
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(repo, nil, nil, notifier)

	got, err := svc.Submit(context.Background(), userSession(), SubmitInput{
		Tanggal: "2026-08-28",
		Items: []entity.PengajuanItem{
			// client-sent total is wrong on purpose; it must be recomputed
			{NamaBarang: "Kertas A4", Jumlah: 2, Satuan: "rim", Harga: 50000, Total: 999},
		},
		SignatureUser: "budi | 28/08/2026 08:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Equal(t, "001/KDNINV/2026", got.NoNota)
	assert.Equal(t, int64(100000), got.Items[0].Total)
	assert.Equal(t, int64(100000), got.GrandTotal)
	assert.Equal(t, "seratus ribu rupiah", got.GrandTotalTerbilang)
	assert.Equal(t, int64(7), got.SubmittedBy)
	assert.NotEmpty(t, got.ID)

	require.Len(t, notifier.published, 1)
	assert.Equal(t, event.TypeNotaSubmitted, notifier.published[0].Type)
	assert.Equal(t, []string{entity.RoleManager}, notifier.published[0].TargetRoles)
}

func TestSubmitForbiddenForManager(t *testing.T) {
	svc := newTestService(&mockPengajuanRepo{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), managerSession(), SubmitInput{
		Items: []entity.PengajuanItem{{NamaBarang: "X", Jumlah: 1, Harga: 1}},
	})
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestSubmitRejectsInvalidItems(t *testing.T) {
	svc := newTestService(&mockPengajuanRepo{}, nil, nil, nil)

	cases := []struct {
		name  string
		items []entity.PengajuanItem
	}{
		{"no items", nil},
		{"empty name", []entity.PengajuanItem{{NamaBarang: "  ", Jumlah: 1, Harga: 1}}},
		{"zero jumlah", []entity.PengajuanItem{{NamaBarang: "X", Jumlah: 0, Harga: 1}}},
		{"negative harga", []entity.PengajuanItem{{NamaBarang: "X", Jumlah: 1, Harga: -5}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), userSession(), SubmitInput{Items: tc.items})
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

func TestSubmitRejectsTooManyFiles(t *testing.T) {
	svc := newTestService(&mockPengajuanRepo{}, nil, nil, nil)

	files := make([]entity.FileAttachment, MaxAttachments+1)
	_, err := svc.Submit(context.Background(), userSession(), SubmitInput{
		Items: []entity.PengajuanItem{{NamaBarang: "X", Jumlah: 1, Harga: 1}},
		Files: files,
	})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

// --- Approve ---

func TestApproveStampsManagerSignature(t *testing.T) {
	var persisted *entity.Pengajuan
	var guard string
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			return pendingNota(7), nil
		},
		updateIfStatusFunc: func(ctx context.Context, p *entity.Pengajuan, expectedStatus string) error {
			persisted, guard = p, expectedStatus
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(repo, nil, nil, notifier)

	got, err := svc.Approve(context.Background(), managerSession(), "nota-1")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Equal(t, entity.StatusPending, guard)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, int64(1), *got.ApprovedBy)
	assert.Contains(t, got.SignatureManager, "manajer | ")
	assert.Same(t, got, persisted)

	require.Len(t, notifier.published, 1)
	assert.Equal(t, event.TypeNotaApproved, notifier.published[0].Type)
	assert.Equal(t, int64(7), notifier.published[0].TargetUserID)
}

func TestApproveForbiddenForNonManager(t *testing.T) {
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			t.Fatal("role must be checked before the nota is loaded")
			return nil, nil
		},
	}
	svc := newTestService(repo, nil, nil, nil)

	for _, actor := range []entity.Session{userSession(), adminSession()} {
		_, err := svc.Approve(context.Background(), actor, "nota-1")
		assert.ErrorIs(t, err, entity.ErrForbidden)
	}
}

func TestApproveRequiresPendingStatus(t *testing.T) {
	for _, status := range []string{entity.StatusApproved, entity.StatusRejected, entity.StatusFinished} {
		repo := &mockPengajuanRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
				p := pendingNota(7)
				p.Status = status
				return p, nil
			},
		}
		svc := newTestService(repo, nil, nil, nil)

		_, err := svc.Approve(context.Background(), managerSession(), "nota-1")
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition, "from %s", status)
	}
}

func TestApproveLostRaceSurfacesAsInvalidTransition(t *testing.T) {
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			return pendingNota(7), nil
		},
		updateIfStatusFunc: func(ctx context.Context, p *entity.Pengajuan, expectedStatus string) error {
			return entity.ErrStaleStatus
		},
	}
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.Approve(context.Background(), managerSession(), "nota-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

// --- Reject ---

func TestRejectRequiresReasonAndSkipsManagerSignature(t *testing.T) {
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			return pendingNota(7), nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(repo, nil, nil, notifier)

	_, err := svc.Reject(context.Background(), managerSession(), "nota-1", "   ")
	assert.ErrorIs(t, err, entity.ErrValidation)

	got, err := svc.Reject(context.Background(), managerSession(), "nota-1", "Bukti tidak valid")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, got.Status)
	assert.Equal(t, "Bukti tidak valid", got.RejectionReason)
	require.NotNil(t, got.RejectedBy)
	assert.Equal(t, int64(1), *got.RejectedBy)
	assert.Empty(t, got.SignatureManager)

	require.Len(t, notifier.published, 1)
	assert.Equal(t, event.TypeNotaRejected, notifier.published[0].Type)
	assert.Contains(t, notifier.published[0].Payload.Body, "Bukti tidak valid")
}

// --- Finish ---

func TestFinishAdminOnlyFromApproved(t *testing.T) {
	approved := pendingNota(7)
	approved.Status = entity.StatusApproved
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			return approved, nil
		},
	}
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.Finish(context.Background(), managerSession(), "nota-1")
	assert.ErrorIs(t, err, entity.ErrForbidden)

	got, err := svc.Finish(context.Background(), adminSession(), "nota-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFinished, got.Status)
	assert.Contains(t, got.SignatureAdminFinish, "admin | ")
	require.NotNil(t, got.FinishedBy)
	assert.Equal(t, int64(2), *got.FinishedBy)
}

func TestFinishRequiresApprovedStatus(t *testing.T) {
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			return pendingNota(7), nil
		},
	}
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.Finish(context.Background(), adminSession(), "nota-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

// --- Resubmit ---

func TestResubmitClearsRejectionAndRecomputes(t *testing.T) {
	rejected := pendingNota(7)
	rejected.Status = entity.StatusRejected
	rejectedBy := int64(1)
	rejected.RejectedBy = &rejectedBy
	rejected.RejectedByUsername = "manajer"
	rejected.RejectionReason = "Bukti tidak valid"

	var persisted *entity.Pengajuan
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			return rejected, nil
		},
		updateIfStatusFunc: func(ctx context.Context, p *entity.Pengajuan, expectedStatus string) error {
			persisted = p
			assert.Equal(t, entity.StatusRejected, expectedStatus)
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(repo, nil, nil, notifier)

	got, err := svc.Resubmit(context.Background(), userSession(), "nota-1", ResubmitInput{
		Items: []entity.PengajuanItem{{NamaBarang: "Tinta printer", Jumlah: 3, Satuan: "botol", Harga: 500000}},
	})
	require.NoError(t, err)
	require.NotNil(t, persisted)

	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Nil(t, got.RejectedBy)
	assert.Empty(t, got.RejectionReason)
	assert.Equal(t, int64(1500000), got.GrandTotal)
	assert.Equal(t, "satu juta lima ratus ribu rupiah", got.GrandTotalTerbilang)
	// the original submitter signature survives the edit
	assert.Equal(t, "budi | 28/08/2026 08:00:00", got.SignatureUser)
	// nota number is permanent across resubmissions
	assert.Equal(t, "001/KDNINV/2026", got.NoNota)

	require.Len(t, notifier.published, 1)
	assert.Equal(t, event.TypeNotaResubmitted, notifier.published[0].Type)
}

func TestResubmitOnlyBySubmitter(t *testing.T) {
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			return pendingNota(99), nil
		},
	}
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.Resubmit(context.Background(), userSession(), "nota-1", ResubmitInput{
		Items: []entity.PengajuanItem{{NamaBarang: "X", Jumlah: 1, Harga: 1}},
	})
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestResubmitBlockedFromTerminalStates(t *testing.T) {
	for _, status := range []string{entity.StatusApproved, entity.StatusFinished} {
		repo := &mockPengajuanRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
				p := pendingNota(7)
				p.Status = status
				return p, nil
			},
		}
		svc := newTestService(repo, nil, nil, nil)

		_, err := svc.Resubmit(context.Background(), userSession(), "nota-1", ResubmitInput{
			Items: []entity.PengajuanItem{{NamaBarang: "X", Jumlah: 1, Harga: 1}},
		})
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition, "from %s", status)
	}
}

// --- Get / List ---

func TestGetScopesUsersToOwnNotas(t *testing.T) {
	repo := &mockPengajuanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Pengajuan, error) {
			return pendingNota(99), nil
		},
	}
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.Get(context.Background(), userSession(), "nota-1")
	assert.ErrorIs(t, err, entity.ErrForbidden)

	got, err := svc.Get(context.Background(), managerSession(), "nota-1")
	require.NoError(t, err)
	assert.Equal(t, "nota-1", got.ID)
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(&mockPengajuanRepo{}, nil, nil, nil)

	_, err := svc.Get(context.Background(), managerSession(), "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestListScopesAndFilters(t *testing.T) {
	var gotFilter port.PengajuanFilter
	repo := &mockPengajuanRepo{
		listFunc: func(ctx context.Context, filter port.PengajuanFilter) ([]*entity.Pengajuan, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.List(context.Background(), userSession(), ListFilter{Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), gotFilter.SubmittedBy)
	assert.Empty(t, gotFilter.Status)

	_, err = svc.List(context.Background(), managerSession(), ListFilter{Status: "pending", From: "2026-01-01"})
	require.NoError(t, err)
	assert.Zero(t, gotFilter.SubmittedBy)
	assert.Equal(t, "pending", gotFilter.Status)
	assert.Equal(t, "2026-01-01", gotFilter.From)

	_, err = svc.List(context.Background(), adminSession(), ListFilter{Mine: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), gotFilter.SubmittedBy)
}
