package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles fund movement endpoints.
type TransferHandler struct {
	transferSvc     ports.TransferService
	disbursementSvc ports.DisbursementService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferSvc ports.TransferService, disbursementSvc ports.DisbursementService) *TransferHandler {
	return &TransferHandler{
		transferSvc:     transferSvc,
		disbursementSvc: disbursementSvc,
	}
}

// Transfer handles POST /api/v1/transfers. Recipients are addressed by
// their reserved account number and bank name; when the pair belongs to
// another wallet in the system the move settles internally.
func (h *TransferHandler) Transfer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.transferSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderUserID:  userID,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		Amount:        req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(txn))
}

// BankTransfer handles POST /api/v1/transfers/bank. The response is 202:
// the payout settles asynchronously via the disbursement webhook.
func (h *TransferHandler) BankTransfer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.BankTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.disbursementSvc.Disburse(c.Request.Context(), ports.DisbursementRequest{
		SenderUserID:  userID,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		Amount:        req.Amount,
		Narration:     req.Narration,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, dto.FromTransaction(txn))
}
