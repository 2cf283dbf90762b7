package http

import (
	"github.com/gin-gonic/gin"

	"github.com/kdninv/nota-api/internal/application/service"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// SubmitPengajuanRequest is the nota creation payload. Item totals are
// recomputed server-side regardless of what arrives here.
type SubmitPengajuanRequest struct {
	Tanggal          string                  `json:"tanggal"`
	Divisi           string                  `json:"divisi"`
	RekeningSumber   string                  `json:"rekening_sumber"`
	BankSumber       string                  `json:"bank_sumber"`
	NamaSumber       string                  `json:"nama_sumber"`
	RekeningPenerima string                  `json:"rekening_penerima"`
	BankPenerima     string                  `json:"bank_penerima"`
	NamaPenerima     string                  `json:"nama_penerima"`
	Items            []entity.PengajuanItem  `json:"items"`
	Files            []entity.FileAttachment `json:"files"`
	Keterangan       string                  `json:"keterangan"`
	SignatureUser    string                  `json:"signature_user"`
}

// SubmitPengajuan handles POST /api/pengajuan
func (h *Handlers) SubmitPengajuan(c *gin.Context) {
	var req SubmitPengajuanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	p, err := h.pengajuanService.Submit(c.Request.Context(), currentSession(c), service.SubmitInput{
		Tanggal:          req.Tanggal,
		Divisi:           req.Divisi,
		RekeningSumber:   req.RekeningSumber,
		BankSumber:       req.BankSumber,
		NamaSumber:       req.NamaSumber,
		RekeningPenerima: req.RekeningPenerima,
		BankPenerima:     req.BankPenerima,
		NamaPenerima:     req.NamaPenerima,
		Items:            req.Items,
		Files:            req.Files,
		Keterangan:       req.Keterangan,
		SignatureUser:    req.SignatureUser,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, p)
}

// ListPengajuan handles GET /api/pengajuan
func (h *Handlers) ListPengajuan(c *gin.Context) {
	filter := service.ListFilter{
		Status: c.Query("status"),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Mine:   c.Query("mine") == "1" || c.Query("mine") == "true",
	}

	list, err := h.pengajuanService.List(c.Request.Context(), currentSession(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*entity.Pengajuan{}
	}
	h.ok(c, list)
}

// GetPengajuan handles GET /api/pengajuan/:id
func (h *Handlers) GetPengajuan(c *gin.Context) {
	p, err := h.pengajuanService.Get(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, p)
}

// UpdatePengajuanRequest is the tagged transition payload for PATCH.
// Action selects the transition; the edit action carries the replacement
// document alongside.
type UpdatePengajuanRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`

	Divisi           string                  `json:"divisi"`
	RekeningSumber   string                  `json:"rekening_sumber"`
	BankSumber       string                  `json:"bank_sumber"`
	NamaSumber       string                  `json:"nama_sumber"`
	RekeningPenerima string                  `json:"rekening_penerima"`
	BankPenerima     string                  `json:"bank_penerima"`
	NamaPenerima     string                  `json:"nama_penerima"`
	Items            []entity.PengajuanItem  `json:"items"`
	Files            []entity.FileAttachment `json:"files"`
	Keterangan       string                  `json:"keterangan"`
}

// UpdatePengajuan handles PATCH /api/pengajuan/:id
func (h *Handlers) UpdatePengajuan(c *gin.Context) {
	var req UpdatePengajuanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	ctx := c.Request.Context()
	session := currentSession(c)
	id := c.Param("id")

	var p *entity.Pengajuan
	var err error
	switch req.Action {
	case "approve":
		p, err = h.pengajuanService.Approve(ctx, session, id)
	case "reject":
		p, err = h.pengajuanService.Reject(ctx, session, id, req.Reason)
	case "finish":
		p, err = h.pengajuanService.Finish(ctx, session, id)
	case "edit":
		p, err = h.pengajuanService.Resubmit(ctx, session, id, service.ResubmitInput{
			Divisi:           req.Divisi,
			RekeningSumber:   req.RekeningSumber,
			BankSumber:       req.BankSumber,
			NamaSumber:       req.NamaSumber,
			RekeningPenerima: req.RekeningPenerima,
			BankPenerima:     req.BankPenerima,
			NamaPenerima:     req.NamaPenerima,
			Items:            req.Items,
			Files:            req.Files,
			Keterangan:       req.Keterangan,
		})
	default:
		h.badRequest(c, "aksi tidak dikenal")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, p)
}

// PeekNotaNumber handles GET /api/nota-counter
func (h *Handlers) PeekNotaNumber(c *gin.Context) {
	noNota, err := h.pengajuanService.PeekNotaNumber(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"no_nota": noNota})
}
