// Package port defines the interfaces the application services depend on.
// Concrete implementations live under internal/infrastructure.
package port

import (
	"context"

	"github.com/kdninv/nota-api/internal/domain/entity"
)

// TransactionManager runs a function inside a database transaction.
// Repository calls made with the ctx it passes join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PengajuanFilter narrows a nota listing. Zero values mean "no filter".
type PengajuanFilter struct {
	Status      string
	From        string // tanggal lower bound, YYYY-MM-DD
	To          string // tanggal upper bound, YYYY-MM-DD
	SubmittedBy int64
}

// PengajuanRepository persists notas.
type PengajuanRepository interface {
	Create(ctx context.Context, p *entity.Pengajuan) error

	// GetByID returns (nil, nil) when no nota has that id.
	GetByID(ctx context.Context, id string) (*entity.Pengajuan, error)

	List(ctx context.Context, filter PengajuanFilter) ([]*entity.Pengajuan, error)

	// UpdateIfStatus persists p only while the stored status still equals
	// expectedStatus, making the legality check and the mutation atomic with
	// respect to concurrent transitions. Returns entity.ErrStaleStatus when
	// another writer got there first and entity.ErrNotFound when the row is
	// gone.
	UpdateIfStatus(ctx context.Context, p *entity.Pengajuan, expectedStatus string) error
}

// NotaSequence hands out the per-year human-readable nota numbers,
// formatted NNN/KDNINV/YYYY.
type NotaSequence interface {
	// Next consumes and returns the next number for the year.
	Next(ctx context.Context, year int) (string, error)

	// Peek returns the number Next would produce, without consuming it.
	Peek(ctx context.Context, year int) (string, error)
}

// UserRepository persists accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	// List returns every account except excludeID, managers first.
	List(ctx context.Context, excludeID int64) ([]*entity.User, error)
	Delete(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, hashed string) error
	UpdateFullName(ctx context.Context, id int64, fullName string) error
}

// RekeningRepository persists the shared bank account directory.
type RekeningRepository interface {
	List(ctx context.Context) ([]*entity.Rekening, error)
	// Upsert inserts or, on a (no_rekening, bank) conflict, refreshes nama.
	Upsert(ctx context.Context, r *entity.Rekening) (*entity.Rekening, error)
	// Update rewrites the row identified by (noRekening, bank).
	Update(ctx context.Context, noRekening, bank string, updated *entity.Rekening) (*entity.Rekening, error)
	Delete(ctx context.Context, noRekening, bank string) error
}

// PushSubscriptionRepository persists Web Push registrations.
type PushSubscriptionRepository interface {
	// Upsert inserts or, on an endpoint conflict, reassigns the subscription.
	Upsert(ctx context.Context, s *entity.PushSubscription) error
	ListByUser(ctx context.Context, userID int64) ([]*entity.PushSubscription, error)
	ListByRoles(ctx context.Context, roles []string) ([]*entity.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error
	DeleteByUser(ctx context.Context, userID int64) error
	// DeleteEndpoints prunes subscriptions the push service reported gone.
	DeleteEndpoints(ctx context.Context, endpoints []string) error
}
