package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kdninv/nota-api/internal/application/service"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// Upload handles POST /api/upload. It accepts up to three multipart files
// under the "files" field and returns their stored handles for inclusion in
// a later submit or edit.
func (h *Handlers) Upload(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "penyimpanan file tidak dikonfigurasi",
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		h.badRequest(c, "tidak ada file yang diunggah")
		return
	}
	if len(files) > service.MaxAttachments {
		h.badRequest(c, "maksimum 3 file lampiran")
		return
	}

	attachments := make([]entity.FileAttachment, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.fail(c, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.fail(c, err)
			return
		}

		att, err := h.store.Upload(c.Request.Context(), data, fh.Filename, h.uploadFolder)
		if err != nil {
			h.fail(c, err)
			return
		}
		attachments = append(attachments, *att)
	}

	h.ok(c, attachments)
}
