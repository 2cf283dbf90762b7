package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), currentSession(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	h.ok(c, resp)
}

// CreateUserRequest is the account creation payload.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser handles POST /api/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), currentSession(c), req.Username, req.Password, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toUserResponse(user))
}

// DeleteUser handles DELETE /api/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "id user tidak valid")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), currentSession(c), id); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"message": "user berhasil dihapus"})
}

// ResetPasswordRequest is the staff password reset payload.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ResetUserPassword handles PATCH /api/users/:id/password
func (h *Handlers) ResetUserPassword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "id user tidak valid")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), currentSession(c), id, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"message": "password berhasil direset"})
}
