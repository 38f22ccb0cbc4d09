package ports

import "context"

// RailClient is the boundary to the external bank-rail provider. The
// transport behind it is opaque to the ledger core.
type RailClient interface {
	// CreateReservedAccount provisions a dedicated external account for a
	// new wallet.
	CreateReservedAccount(ctx context.Context, req ReservedAccountRequest) (*ReservedAccount, error)
	// ResolveBankCode maps a human bank name to the provider's bank code.
	ResolveBankCode(ctx context.Context, bankName string) (string, error)
	// InitiatePayout submits a disbursement. A definite provider rejection
	// is reported as apperror RAIL_001; transport failures are ambiguous
	// and leave the local transaction PENDING.
	InitiatePayout(ctx context.Context, req PayoutRequest) error
	// CreatePaymentLink requests a hosted checkout URL for a deposit.
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (string, error)
}

// ReservedAccountRequest identifies the wallet owner to the provider.
type ReservedAccountRequest struct {
	AccountReference string
	Name             string
	Email            string
}

// ReservedAccount is the provider-issued account bound to a wallet.
type ReservedAccount struct {
	AccountNumber string
	BankName      string
}

// PayoutRequest describes a single outbound transfer.
type PayoutRequest struct {
	Reference          string
	Amount             int64
	Narration          string
	DestinationAccount string
	DestinationBank    string // provider bank code
}

// PaymentLinkRequest describes a deposit checkout session.
type PaymentLinkRequest struct {
	Reference string
	Amount    int64
	Name      string
	Email     string
}
