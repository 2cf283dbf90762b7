package http

import (
	"github.com/gin-gonic/gin"

	"github.com/kdninv/nota-api/internal/domain/entity"
)

// RekeningRequest carries a directory entry. The New* fields only matter on
// update, when the key pair itself changes.
type RekeningRequest struct {
	NoRekening    string `json:"no_rekening"`
	Bank          string `json:"bank"`
	Nama          string `json:"nama"`
	NewNoRekening string `json:"new_no_rekening"`
	NewBank       string `json:"new_bank"`
}

// ListRekening handles GET /api/rekening
func (h *Handlers) ListRekening(c *gin.Context) {
	list, err := h.rekeningService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*entity.Rekening{}
	}
	h.ok(c, list)
}

// SaveRekening handles POST /api/rekening
func (h *Handlers) SaveRekening(c *gin.Context) {
	var req RekeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	saved, err := h.rekeningService.Save(c.Request.Context(), currentSession(c), req.NoRekening, req.Bank, req.Nama)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, saved)
}

// UpdateRekening handles PUT /api/rekening
func (h *Handlers) UpdateRekening(c *gin.Context) {
	var req RekeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	updated, err := h.rekeningService.Update(c.Request.Context(), currentSession(c),
		req.NoRekening, req.Bank, req.Nama, req.NewNoRekening, req.NewBank)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, updated)
}

// DeleteRekening handles DELETE /api/rekening
func (h *Handlers) DeleteRekening(c *gin.Context) {
	var req RekeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	if err := h.rekeningService.Delete(c.Request.Context(), currentSession(c), req.NoRekening, req.Bank); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"message": "rekening berhasil dihapus"})
}
