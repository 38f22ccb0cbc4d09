package dto

import (
	"time"

	"wallet-ledger/internal/core/domain"
)

// CreateWalletRequest is the request body for wallet provisioning.
type CreateWalletRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"required,email"`
}

// TransferRequest is the request body for an internal transfer.
type TransferRequest struct {
	AccountNumber string `json:"account_number" binding:"required,numeric,min=10,max=10"`
	BankName      string `json:"bank_name" binding:"required,bank_name"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
}

// BankTransferRequest is the request body for an external disbursement.
type BankTransferRequest struct {
	AccountNumber string `json:"account_number" binding:"required,numeric,min=10,max=10"`
	BankName      string `json:"bank_name" binding:"required,bank_name"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Narration     string `json:"narration" binding:"omitempty,max=100"`
}

// FundRequest is the request body for a deposit initiation.
type FundRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// WalletResponse is the response body for wallet queries.
type WalletResponse struct {
	ID            string `json:"id"`
	Balance       int64  `json:"balance"`
	Tier          string `json:"tier"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	CreatedAt     string `json:"created_at"`
}

// TransactionResponse is the response body for ledger entries.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      int64   `json:"amount"`
	Type        string  `json:"type"`
	Reference   *string `json:"reference,omitempty"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
	SettledAt   *string `json:"settled_at,omitempty"`
}

// FundingResponse is the response body for a deposit initiation.
type FundingResponse struct {
	PaymentLink string `json:"payment_link"`
	Reference   string `json:"reference"`
}

// TransactionListResponse wraps a paginated statement page.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// FromWallet maps a domain wallet to its response shape.
func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:            w.ID.String(),
		Balance:       w.Balance,
		Tier:          string(w.Tier),
		AccountNumber: w.AccountNumber,
		BankName:      w.BankName,
		CreatedAt:     w.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromTransaction maps a domain transaction to its response shape.
func FromTransaction(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Amount:      t.Amount,
		Type:        string(t.Type),
		Reference:   t.Reference,
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.SettledAt != nil {
		s := t.SettledAt.UTC().Format(time.RFC3339)
		resp.SettledAt = &s
	}
	return resp
}
