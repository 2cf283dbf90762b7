package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kdninv/nota-api/internal/domain/entity"
)

func TestCreateUserHierarchy(t *testing.T) {
	cases := []struct {
		name    string
		actor   entity.Session
		role    string
		wantErr error
	}{
		{"manager creates admin", managerSession(), entity.RoleAdmin, nil},
		{"manager cannot create user", managerSession(), entity.RoleUser, entity.ErrForbidden},
		{"manager cannot create manager", managerSession(), entity.RoleManager, entity.ErrForbidden},
		{"admin creates user", adminSession(), entity.RoleUser, nil},
		{"admin cannot create admin", adminSession(), entity.RoleAdmin, entity.ErrForbidden},
		{"user cannot create anyone", userSession(), entity.RoleUser, entity.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var created *entity.User
			repo := &mockUserRepo{
				createFunc: func(ctx context.Context, u *entity.User) error {
					created = u
					return nil
				},
			}
			svc := NewUserService(repo, &mockLogger{})

			got, err := svc.Create(context.Background(), tc.actor, "Siti ", "rahasia1", tc.role)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, created)
			assert.Equal(t, "siti", got.Username)
			assert.Equal(t, tc.role, got.Role)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("rahasia1")))
		})
	}
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, &mockLogger{})

	_, err := svc.Create(context.Background(), managerSession(), "siti", "abc", entity.RoleAdmin)
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{
		getByUsernameFunc: func(ctx context.Context, username string) (*entity.User, error) {
			return &entity.User{ID: 5, Username: username}, nil
		},
	}
	svc := NewUserService(repo, &mockLogger{})

	_, err := svc.Create(context.Background(), managerSession(), "siti", "rahasia1", entity.RoleAdmin)
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestDeleteUserGuards(t *testing.T) {
	target := &entity.User{ID: 9, Username: "siti", Role: entity.RoleAdmin}
	repo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			if id == target.ID {
				return target, nil
			}
			return nil, nil
		},
	}
	svc := NewUserService(repo, &mockLogger{})

	// self-deletion refused
	err := svc.Delete(context.Background(), managerSession(), managerSession().UserID)
	assert.ErrorIs(t, err, entity.ErrValidation)

	// admin cannot delete a fellow admin
	err = svc.Delete(context.Background(), adminSession(), target.ID)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	// missing target
	err = svc.Delete(context.Background(), managerSession(), 12345)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	// manager deletes an admin
	err = svc.Delete(context.Background(), managerSession(), target.ID)
	assert.NoError(t, err)
}

func TestResetPasswordRequiresRank(t *testing.T) {
	target := &entity.User{ID: 9, Username: "siti", Role: entity.RoleAdmin}
	var updatedHash string
	repo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return target, nil
		},
		updatePasswordFunc: func(ctx context.Context, id int64, hashed string) error {
			updatedHash = hashed
			return nil
		},
	}
	svc := NewUserService(repo, &mockLogger{})

	err := svc.ResetPassword(context.Background(), adminSession(), target.ID, "barubaru")
	assert.ErrorIs(t, err, entity.ErrForbidden)

	err = svc.ResetPassword(context.Background(), managerSession(), target.ID, "barubaru")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updatedHash), []byte("barubaru")))
}

func TestListUsersStaffOnly(t *testing.T) {
	repo := &mockUserRepo{
		listFunc: func(ctx context.Context, excludeID int64) ([]*entity.User, error) {
			assert.Equal(t, int64(1), excludeID)
			return []*entity.User{{ID: 2, Username: "admin"}}, nil
		},
	}
	svc := NewUserService(repo, &mockLogger{})

	_, err := svc.List(context.Background(), userSession())
	assert.ErrorIs(t, err, entity.ErrForbidden)

	users, err := svc.List(context.Background(), managerSession())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
