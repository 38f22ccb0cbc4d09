package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a single user's balance. Balance is stored in the minor
// currency unit and must never go negative. The reserved external account
// details are assigned once by the rail provider at creation and never
// change afterwards.
type Wallet struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Balance          int64     `json:"balance"`
	Tier             Tier      `json:"tier"`
	AccountReference string    `json:"account_reference"`
	AccountNumber    string    `json:"account_number"`
	BankName         string    `json:"bank_name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CanCredit reports whether crediting amount keeps the balance within the
// wallet's tier cap.
func (w *Wallet) CanCredit(amount int64) bool {
	return w.Balance+amount <= LimitsFor(w.Tier).MaxBalance
}

// CanDebit reports whether the wallet holds at least amount.
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Balance >= amount
}
