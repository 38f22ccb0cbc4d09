package handler

import (
	"context"
	"io"
	"net/http"

	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives settlement notifications from the rail
// provider. The raw body is passed to the reconciler untouched so the
// signature covers exactly the delivered bytes.
type WebhookHandler struct {
	reconciler      ports.ReconcilerService
	signatureHeader string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(reconciler ports.ReconcilerService, signatureHeader string) *WebhookHandler {
	return &WebhookHandler{
		reconciler:      reconciler,
		signatureHeader: signatureHeader,
	}
}

// Collection handles POST /api/v1/webhooks/collection.
func (h *WebhookHandler) Collection(c *gin.Context) {
	h.handle(c, h.reconciler.ConfirmCollection)
}

// Disbursement handles POST /api/v1/webhooks/disbursement.
func (h *WebhookHandler) Disbursement(c *gin.Context) {
	h.handle(c, h.reconciler.ConfirmDisbursement)
}

func (h *WebhookHandler) handle(c *gin.Context, confirm func(ctx context.Context, payload []byte, signature string) error) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	signature := c.GetHeader(h.signatureHeader)
	if err := confirm(c.Request.Context(), payload, signature); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}
