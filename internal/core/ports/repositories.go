package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks and take the
// row lock that serializes concurrent mutations of the same wallet.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// GetByAccount resolves a wallet by its reserved external account
	// number and bank name pair (internal transfer recipient lookup).
	GetByAccount(ctx context.Context, accountNumber, bankName string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	// AdjustBalance applies a signed delta to the wallet balance. The
	// wallet row must already be locked in the same transaction.
	AdjustBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) error
}

// TransactionRepository defines persistence operations for the append-only
// transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	// GetByReferenceForUpdate locks the transaction row so that the
	// PENDING-only status check and the resolution commit atomically.
	GetByReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*domain.Transaction, error)
	// SumSettledForDay totals non-FAILED transactions of one type for the
	// wallet on the given calendar day (server clock).
	SumSettledForDay(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, txType domain.TransactionType, day time.Time) (int64, error)
	// Resolve moves a transaction to a terminal status with a description.
	Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, description string) error
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for statement queries.
type TransactionListParams struct {
	WalletID uuid.UUID
	Status   *domain.TransactionStatus
	Type     *domain.TransactionType
	Page     int
	PageSize int
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
