package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	// TransactionTypeDeposit is an inbound credit: a confirmed rail deposit
	// or the receiving leg of an internal transfer.
	TransactionTypeDeposit TransactionType = "DEPOSIT"
	// TransactionTypeTransfer is the debit leg of an internal transfer.
	TransactionTypeTransfer TransactionType = "TRANSFER"
	// TransactionTypeBankTransfer is an outbound disbursement to an
	// external bank account via the rail provider.
	TransactionTypeBankTransfer TransactionType = "BANK_TRANSFER"
)

// TransactionStatus represents the lifecycle state of a transaction.
// PENDING moves exactly once to SUCCESS or FAILED; both are terminal.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is an append-only ledger entry for one balance-affecting
// event. Reference is set only for externally-settled transactions; it is
// unique across the ledger and serves as the idempotency key for webhook
// reconciliation. Settled transactions are never mutated again.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	WalletID    uuid.UUID         `json:"wallet_id"`
	Amount      int64             `json:"amount"`
	Type        TransactionType   `json:"type"`
	Reference   *string           `json:"reference,omitempty"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	SettledAt   *time.Time        `json:"settled_at,omitempty"`
}

// IsTerminal returns true once the transaction has settled.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
