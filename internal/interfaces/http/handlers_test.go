package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdninv/nota-api/internal/application/service"
	"github.com/kdninv/nota-api/internal/auth"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/domain/workflow"
)

type mockAuthService struct {
	loginFunc func(ctx context.Context, username, password string) (*entity.User, string, error)
	meFunc    func(ctx context.Context, userID int64) (*entity.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*entity.User, string, error) {
	return m.loginFunc(ctx, username, password)
}

func (m *mockAuthService) Me(ctx context.Context, userID int64) (*entity.User, error) {
	if m.meFunc != nil {
		return m.meFunc(ctx, userID)
	}
	return &entity.User{ID: userID, Username: "budi", Role: entity.RoleUser}, nil
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	return nil
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID int64, fullName string) error {
	return nil
}

type mockPengajuanService struct {
	approveFunc func(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error)
	rejectFunc  func(ctx context.Context, actor entity.Session, id, reason string) (*entity.Pengajuan, error)
}

func (m *mockPengajuanService) Submit(ctx context.Context, actor entity.Session, in service.SubmitInput) (*entity.Pengajuan, error) {
	return &entity.Pengajuan{ID: "new", Status: entity.StatusPending}, nil
}

func (m *mockPengajuanService) Get(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error) {
	return nil, fmt.Errorf("%w: pengajuan %s", entity.ErrNotFound, id)
}

func (m *mockPengajuanService) List(ctx context.Context, actor entity.Session, filter service.ListFilter) ([]*entity.Pengajuan, error) {
	return nil, nil
}

func (m *mockPengajuanService) Approve(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error) {
	return m.approveFunc(ctx, actor, id)
}

func (m *mockPengajuanService) Reject(ctx context.Context, actor entity.Session, id, reason string) (*entity.Pengajuan, error) {
	return m.rejectFunc(ctx, actor, id, reason)
}

func (m *mockPengajuanService) Finish(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error) {
	return nil, nil
}

func (m *mockPengajuanService) Resubmit(ctx context.Context, actor entity.Session, id string, in service.ResubmitInput) (*entity.Pengajuan, error) {
	return nil, nil
}

func (m *mockPengajuanService) PeekNotaNumber(ctx context.Context) (string, error) {
	return "002/KDNINV/2026", nil
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestServer(t *testing.T, pengajuan service.PengajuanService) (*Server, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret")
	authSvc := &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*entity.User, string, error) {
			if username == "budi" && password == "rahasia1" {
				token, err := tokens.Sign(entity.Session{UserID: 7, Username: "budi", Role: entity.RoleUser})
				return &entity.User{ID: 7, Username: "budi", Role: entity.RoleUser}, token, err
			}
			return nil, "", fmt.Errorf("%w: password salah", entity.ErrUnauthorized)
		},
	}
	srv := NewServer(DefaultServerConfig(), Services{
		Auth:      authSvc,
		Pengajuan: pengajuan,
	}, tokens, noopLogger{})
	return srv, tokens
}

func sessionCookie(t *testing.T, tokens *auth.TokenManager, s entity.Session) *http.Cookie {
	t.Helper()
	token, err := tokens.Sign(s)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func doJSON(srv *Server, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestLoginSetsSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t, &mockPengajuanService{})

	w := doJSON(srv, http.MethodPost, "/api/login", payload{"username": "budi", "password": "rahasia1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServer(t, &mockPengajuanService{})

	w := doJSON(srv, http.MethodPost, "/api/login", payload{"username": "budi", "password": "salah"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv, _ := newTestServer(t, &mockPengajuanService{})

	w := doJSON(srv, http.MethodGet, "/api/pengajuan", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(srv, http.MethodGet, "/api/me", nil, &http.Cookie{Name: auth.CookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPatchDispatchesTaggedActions(t *testing.T) {
	var gotAction, gotReason string
	pengajuan := &mockPengajuanService{
		approveFunc: func(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error) {
			gotAction = "approve"
			return &entity.Pengajuan{ID: id, Status: entity.StatusApproved}, nil
		},
		rejectFunc: func(ctx context.Context, actor entity.Session, id, reason string) (*entity.Pengajuan, error) {
			gotAction, gotReason = "reject", reason
			return &entity.Pengajuan{ID: id, Status: entity.StatusRejected}, nil
		},
	}
	srv, tokens := newTestServer(t, pengajuan)
	cookie := sessionCookie(t, tokens, entity.Session{UserID: 1, Username: "manajer", Role: entity.RoleManager})

	w := doJSON(srv, http.MethodPatch, "/api/pengajuan/nota-1", payload{"action": "approve"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approve", gotAction)

	w = doJSON(srv, http.MethodPatch, "/api/pengajuan/nota-1",
		payload{"action": "reject", "reason": "Bukti tidak valid"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reject", gotAction)
	assert.Equal(t, "Bukti tidak valid", gotReason)

	w = doJSON(srv, http.MethodPatch, "/api/pengajuan/nota-1", payload{"action": "explode"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	pengajuan := &mockPengajuanService{
		approveFunc: func(ctx context.Context, actor entity.Session, id string) (*entity.Pengajuan, error) {
			return nil, fmt.Errorf("%w: transisi tidak sah", workflow.ErrInvalidTransition)
		},
	}
	srv, tokens := newTestServer(t, pengajuan)
	cookie := sessionCookie(t, tokens, entity.Session{UserID: 1, Username: "manajer", Role: entity.RoleManager})

	// invalid transition -> 400
	w := doJSON(srv, http.MethodPatch, "/api/pengajuan/nota-1", payload{"action": "approve"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// not found -> 404
	w = doJSON(srv, http.MethodGet, "/api/pengajuan/missing", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "tidak ditemukan")
}

// payload is a loose request body.
type payload = map[string]interface{}
