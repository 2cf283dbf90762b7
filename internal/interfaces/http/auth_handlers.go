package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kdninv/nota-api/internal/auth"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the account shape returned to clients. The password hash
// never leaves the server.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// Login handles POST /api/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setSessionCookie(c, token, int(auth.TokenTTL.Seconds()))
	h.ok(c, toUserResponse(user))
}

// LogoutRequest optionally names the browser's push endpoint so the
// subscription dies with the session.
type LogoutRequest struct {
	Endpoint string `json:"endpoint"`
}

// Logout handles POST /api/logout
func (h *Handlers) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	// Best effort: the route is open, so only drop the subscription when
	// the cookie still carries a valid session.
	if req.Endpoint != "" && h.pushService != nil {
		if token, err := c.Cookie(auth.CookieName); err == nil {
			if session, err := h.tokens.Verify(token); err == nil {
				if err := h.pushService.Unsubscribe(c.Request.Context(), session.UserID, req.Endpoint); err != nil {
					h.logger.Error("Failed to drop push subscription on logout", "error", err)
				}
			}
		}
	}

	h.setSessionCookie(c, "", -1)
	h.ok(c, gin.H{"message": "berhasil logout"})
}

// Me handles GET /api/me
func (h *Handlers) Me(c *gin.Context) {
	session := currentSession(c)

	user, err := h.authService.Me(c.Request.Context(), session.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toUserResponse(user))
}

// ChangePasswordRequest is the self-service password change payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword handles POST /api/change-password
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	session := currentSession(c)
	if err := h.authService.ChangePassword(c.Request.Context(), session.UserID, req.OldPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"message": "password berhasil diubah"})
}

// UpdateProfileRequest is the profile update payload.
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
}

// UpdateProfile handles PATCH /api/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	session := currentSession(c)
	if err := h.authService.UpdateProfile(c.Request.Context(), session.UserID, req.FullName); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"message": "profil berhasil diperbarui"})
}

func (h *Handlers) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", h.secureCookies, true)
}
