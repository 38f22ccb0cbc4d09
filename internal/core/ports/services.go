package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// SignatureVerifier checks webhook authenticity with a keyed digest over
// the raw payload.
type SignatureVerifier interface {
	Verify(payload []byte, signature string) bool
}

// TokenService handles JWT token operations at the identity-provider
// boundary. The ledger core only consumes the user ID inside the token.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (uuid.UUID, error)
}

// --- Service Ports (Business Logic) ---

// TransferService moves funds between two wallets inside the system.
type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error)
}

// TransferRequest holds validated input for an internal transfer.
type TransferRequest struct {
	SenderUserID  uuid.UUID
	AccountNumber string
	BankName      string
	Amount        int64
}

// DisbursementService moves funds from a wallet to an external bank
// account via the rail provider. The returned transaction is PENDING when
// the provider accepted the payout; resolution arrives by webhook.
type DisbursementService interface {
	Disburse(ctx context.Context, req DisbursementRequest) (*domain.Transaction, error)
}

// DisbursementRequest holds validated input for an external payout.
type DisbursementRequest struct {
	SenderUserID  uuid.UUID
	AccountNumber string
	BankName      string
	Amount        int64
	Narration     string
}

// FundingService initiates a deposit through the rail provider. No balance
// mutation happens until the collection webhook confirms payment.
type FundingService interface {
	InitiateDeposit(ctx context.Context, req FundingRequest) (*FundingIntent, error)
}

// FundingRequest holds validated input for a deposit initiation.
type FundingRequest struct {
	UserID uuid.UUID
	Amount int64
}

// FundingIntent is returned to the caller to complete payment externally.
type FundingIntent struct {
	PaymentLink string `json:"payment_link"`
	Reference   string `json:"reference"`
}

// ReconcilerService is the sole authority resolving externally-settled
// transactions from signed rail webhooks. Both methods take the raw
// request body so the signature covers exactly the delivered bytes.
type ReconcilerService interface {
	ConfirmCollection(ctx context.Context, payload []byte, signature string) error
	ConfirmDisbursement(ctx context.Context, payload []byte, signature string) error
}

// WalletService covers wallet provisioning and statement queries.
type WalletService interface {
	CreateWallet(ctx context.Context, req CreateWalletRequest) (*domain.Wallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// CreateWalletRequest holds input for wallet provisioning. Name and email
// are forwarded to the rail provider when reserving the external account.
type CreateWalletRequest struct {
	UserID uuid.UUID
	Name   string
	Email  string
}
