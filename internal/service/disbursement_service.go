package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DisbursementServiceImpl implements ports.DisbursementService.
//
// The debit is committed before the rail call so the same balance can never
// fund two in-flight payouts. A definite synchronous rejection is undone by
// a compensating credit; an ambiguous transport failure leaves the
// transaction PENDING for webhook reconciliation.
type DisbursementServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	rail       ports.RailClient
	log        zerolog.Logger
}

// NewDisbursementService creates a new DisbursementServiceImpl.
func NewDisbursementService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	rail ports.RailClient,
	log zerolog.Logger,
) *DisbursementServiceImpl {
	return &DisbursementServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		rail:       rail,
		log:        log,
	}
}

// Disburse initiates an external payout and returns the PENDING ledger
// entry once the provider accepted the instruction.
func (s *DisbursementServiceImpl) Disburse(ctx context.Context, req ports.DisbursementRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	// Resolve the bank before any mutation; an unknown bank aborts cleanly.
	bankCode, err := s.rail.ResolveBankCode(ctx, req.BankName)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.ErrInvalidBankName(req.BankName)
	}

	reference := fmt.Sprintf("bank_transfer_%s_%d", req.SenderUserID, time.Now().UnixMilli())

	txn, err := s.debitAndRecord(ctx, req, reference)
	if err != nil {
		return nil, err
	}

	narration := req.Narration
	if narration == "" {
		narration = "Wallet Transfer"
	}
	err = s.rail.InitiatePayout(ctx, ports.PayoutRequest{
		Reference:          reference,
		Amount:             req.Amount,
		Narration:          narration,
		DestinationAccount: req.AccountNumber,
		DestinationBank:    bankCode,
	})
	if err == nil {
		s.log.Info().
			Str("reference", reference).
			Int64("amount", req.Amount).
			Msg("payout accepted, awaiting settlement webhook")
		return txn, nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code == "RAIL_001" {
		// Definite rejection: undo the debit and settle the entry FAILED.
		if compErr := s.compensate(ctx, reference, appErr.Message); compErr != nil {
			s.log.Error().Err(compErr).Str("reference", reference).
				Msg("compensation failed, transaction left PENDING for reconciliation")
			return nil, apperror.InternalError(compErr)
		}
		s.log.Warn().Str("reference", reference).Str("reason", appErr.Message).
			Msg("payout rejected, debit compensated")
		return nil, appErr
	}

	// Ambiguous outcome (timeout, transport fault): the provider may still
	// settle this payout, so the debit stands and the webhook decides.
	s.log.Warn().Err(err).Str("reference", reference).
		Msg("payout outcome unknown, transaction left PENDING")
	return txn, nil
}

// debitAndRecord atomically debits the wallet and inserts the PENDING
// BANK_TRANSFER entry carrying the reference.
func (s *DisbursementServiceImpl) debitAndRecord(ctx context.Context, req ports.DisbursementRequest, reference string) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	sender, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, req.SenderUserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock sender: %w", err))
	}
	if sender == nil {
		return nil, apperror.ErrNotFound("Sender wallet")
	}

	if !sender.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	limits := domain.LimitsFor(sender.Tier)
	movedToday, err := s.txRepo.SumSettledForDay(ctx, dbTx, sender.ID, domain.TransactionTypeBankTransfer, time.Now())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum daily bank transfers: %w", err))
	}
	if movedToday+req.Amount > limits.DailyLimit {
		return nil, apperror.ErrDailyLimitExceeded(string(sender.Tier))
	}

	if err := s.walletRepo.AdjustBalance(ctx, dbTx, sender.ID, -req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    sender.ID,
		Amount:      req.Amount,
		Type:        domain.TransactionTypeBankTransfer,
		Reference:   &reference,
		Status:      domain.TransactionStatusPending,
		Description: fmt.Sprintf("Bank transfer to %s (%s)", req.AccountNumber, req.BankName),
		CreatedAt:   now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record bank transfer: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return txn, nil
}

// compensate credits the debited amount back and marks the entry FAILED.
// The PENDING re-check under the row lock keeps this safe against a
// concurrent webhook resolving the same reference first.
func (s *DisbursementServiceImpl) compensate(ctx context.Context, reference, reason string) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByReferenceForUpdate(ctx, dbTx, reference)
	if err != nil {
		return fmt.Errorf("lock transaction: %w", err)
	}
	if txn == nil || txn.Status != domain.TransactionStatusPending {
		return nil
	}

	if err := s.walletRepo.AdjustBalance(ctx, dbTx, txn.WalletID, txn.Amount); err != nil {
		return fmt.Errorf("credit back: %w", err)
	}
	if err := s.txRepo.Resolve(ctx, dbTx, txn.ID, domain.TransactionStatusFailed, "Bank transfer failed: "+reason); err != nil {
		return fmt.Errorf("resolve transaction: %w", err)
	}

	return dbTx.Commit(ctx)
}
