package service

import (
	"context"
	"encoding/json"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// Rail settlement statuses. The collection rail only advances on PAID;
// the disbursement rail reports a small success family.
const (
	collectionStatusPaid = "PAID"

	disbursementStatusFailed = "FAILED"
)

var disbursementSuccessStatuses = map[string]bool{
	"PAID":       true,
	"SUCCESS":    true,
	"SUCCESSFUL": true,
}

// collectionEvent is the deposit confirmation payload shape.
type collectionEvent struct {
	EventData struct {
		PaymentReference string `json:"paymentReference"`
		AmountPaid       int64  `json:"amountPaid"`
		PaymentStatus    string `json:"paymentStatus"`
	} `json:"eventData"`
}

// disbursementEvent is the payout settlement payload shape.
type disbursementEvent struct {
	EventData struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
	} `json:"eventData"`
}

// ReconcilerServiceImpl implements ports.ReconcilerService. It is the only
// component that resolves externally-settled transactions. Signature
// verification happens before any database access, and the PENDING-only
// status guard is re-checked under the transaction row lock so replayed or
// racing deliveries of the same reference cannot double-apply.
type ReconcilerServiceImpl struct {
	verifier   ports.SignatureVerifier
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewReconcilerService creates a new ReconcilerServiceImpl.
func NewReconcilerService(
	verifier ports.SignatureVerifier,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ReconcilerServiceImpl {
	return &ReconcilerServiceImpl{
		verifier:   verifier,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		log:        log,
	}
}

// ConfirmCollection applies a deposit settlement notification.
func (s *ReconcilerServiceImpl) ConfirmCollection(ctx context.Context, payload []byte, signature string) error {
	if !s.verifier.Verify(payload, signature) {
		s.log.Warn().Msg("collection webhook rejected: invalid signature")
		return apperror.ErrInvalidSignature()
	}

	var event collectionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperror.Validation("Malformed webhook payload")
	}
	data := event.EventData

	// The rail sends intermediate statuses; only PAID settles a deposit.
	if data.PaymentStatus != collectionStatusPaid {
		s.log.Debug().Str("status", data.PaymentStatus).Msg("ignored non-paid collection status")
		return nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByReferenceForUpdate(ctx, dbTx, data.PaymentReference)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		return apperror.ErrNotFound("Transaction")
	}
	if txn.Status != domain.TransactionStatusPending {
		// Replay of an already-settled reference: acknowledge, change nothing.
		return nil
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, txn.WalletID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return apperror.ErrNotFound("Wallet")
	}

	if !wallet.CanCredit(data.AmountPaid) {
		// The confirmed amount would breach the tier cap. The credit is
		// refused and the entry settles FAILED for manual follow-up.
		if err := s.txRepo.Resolve(ctx, dbTx, txn.ID, domain.TransactionStatusFailed, "Deposit refused: exceeds tier balance cap"); err != nil {
			return apperror.InternalError(fmt.Errorf("resolve transaction: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
		s.log.Warn().
			Str("reference", data.PaymentReference).
			Int64("amount", data.AmountPaid).
			Msg("deposit confirmation refused: tier balance cap")
		return nil
	}

	if err := s.walletRepo.AdjustBalance(ctx, dbTx, wallet.ID, data.AmountPaid); err != nil {
		return apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
	}
	if err := s.txRepo.Resolve(ctx, dbTx, txn.ID, domain.TransactionStatusSuccess, "Deposit confirmed"); err != nil {
		return apperror.InternalError(fmt.Errorf("resolve transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", data.PaymentReference).
		Int64("amount", data.AmountPaid).
		Msg("deposit settled")
	return nil
}

// ConfirmDisbursement applies a payout settlement notification. A failure
// status triggers the compensating credit for the debit applied at
// initiation; success statuses settle the entry with no balance change.
func (s *ReconcilerServiceImpl) ConfirmDisbursement(ctx context.Context, payload []byte, signature string) error {
	if !s.verifier.Verify(payload, signature) {
		s.log.Warn().Msg("disbursement webhook rejected: invalid signature")
		return apperror.ErrInvalidSignature()
	}

	var event disbursementEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperror.Validation("Malformed webhook payload")
	}
	data := event.EventData

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByReferenceForUpdate(ctx, dbTx, data.Reference)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		return apperror.ErrNotFound("Transaction")
	}
	if txn.Status != domain.TransactionStatusPending {
		return nil
	}

	switch {
	case disbursementSuccessStatuses[data.Status]:
		// The debit already happened at initiation; just settle.
		if err := s.txRepo.Resolve(ctx, dbTx, txn.ID, domain.TransactionStatusSuccess, "Disbursement successful"); err != nil {
			return apperror.InternalError(fmt.Errorf("resolve transaction: %w", err))
		}
	case data.Status == disbursementStatusFailed:
		// Compensate with the locally recorded amount so the wallet is
		// restored to exactly its pre-debit value.
		if err := s.walletRepo.AdjustBalance(ctx, dbTx, txn.WalletID, txn.Amount); err != nil {
			return apperror.InternalError(fmt.Errorf("credit back: %w", err))
		}
		if err := s.txRepo.Resolve(ctx, dbTx, txn.ID, domain.TransactionStatusFailed, "Disbursement failed by rail provider"); err != nil {
			return apperror.InternalError(fmt.Errorf("resolve transaction: %w", err))
		}
	default:
		// Intermediate status: acknowledge without touching state.
		s.log.Debug().Str("status", data.Status).Str("reference", data.Reference).
			Msg("ignored intermediate disbursement status")
		return nil
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", data.Reference).
		Str("status", data.Status).
		Msg("disbursement settled")
	return nil
}
