package http

import (
	"github.com/gin-gonic/gin"
)

// PushSubscribeRequest mirrors the browser PushSubscription JSON.
type PushSubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// PushStatus handles GET /api/push/status
func (h *Handlers) PushStatus(c *gin.Context) {
	subscribed, err := h.pushService.Status(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"subscribed": subscribed})
}

// PushSubscribe handles POST /api/push/subscribe
func (h *Handlers) PushSubscribe(c *gin.Context) {
	var req PushSubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "format permintaan tidak valid")
		return
	}

	err := h.pushService.Subscribe(c.Request.Context(), currentSession(c).UserID,
		req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"message": "notifikasi diaktifkan"})
}

// PushUnsubscribeRequest optionally names a single endpoint to remove.
type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// PushUnsubscribe handles POST /api/push/unsubscribe
func (h *Handlers) PushUnsubscribe(c *gin.Context) {
	var req PushUnsubscribeRequest
	// empty body means "remove everything"
	_ = c.ShouldBindJSON(&req)

	if err := h.pushService.Unsubscribe(c.Request.Context(), currentSession(c).UserID, req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"message": "notifikasi dimatikan"})
}
