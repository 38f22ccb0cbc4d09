package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TransferServiceImpl implements ports.TransferService. Internal transfers
// settle synchronously: both wallet mutations and both ledger entries
// commit in one database transaction, or none do.
type TransferServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		log:        log,
	}
}

// Transfer moves funds between two wallets. Preconditions are checked in a
// fixed order so callers get a stable error for each failure mode; the
// balance and limit checks are re-evaluated under the row locks so two
// concurrent transfers cannot both pass against a stale balance.
func (s *TransferServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	recipient, err := s.walletRepo.GetByAccount(ctx, req.AccountNumber, req.BankName)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve recipient: %w", err))
	}
	if recipient == nil {
		return nil, apperror.ErrNotFound("Recipient wallet")
	}

	sender, err := s.walletRepo.GetByUserID(ctx, req.SenderUserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve sender: %w", err))
	}
	if sender == nil {
		return nil, apperror.ErrNotFound("Sender wallet")
	}
	if sender.ID == recipient.ID {
		return nil, apperror.Validation("Cannot transfer to own wallet")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both wallets in ID order to avoid lock-order deadlocks between
	// opposing concurrent transfers.
	sender, recipient, err = s.lockPair(ctx, dbTx, sender.ID, recipient.ID)
	if err != nil {
		return nil, err
	}

	if !sender.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	limits := domain.LimitsFor(sender.Tier)
	movedToday, err := s.txRepo.SumSettledForDay(ctx, dbTx, sender.ID, domain.TransactionTypeTransfer, time.Now())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum daily transfers: %w", err))
	}
	if movedToday+req.Amount > limits.DailyLimit {
		return nil, apperror.ErrDailyLimitExceeded(string(sender.Tier))
	}

	if !recipient.CanCredit(req.Amount) {
		return nil, apperror.ErrBalanceCapExceeded(string(recipient.Tier))
	}

	if err := s.walletRepo.AdjustBalance(ctx, dbTx, sender.ID, -req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}
	if err := s.walletRepo.AdjustBalance(ctx, dbTx, recipient.ID, req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit recipient: %w", err))
	}

	now := time.Now().UTC()
	debit := &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    sender.ID,
		Amount:      req.Amount,
		Type:        domain.TransactionTypeTransfer,
		Status:      domain.TransactionStatusSuccess,
		Description: fmt.Sprintf("Sent to %s (%s)", req.AccountNumber, req.BankName),
		CreatedAt:   now,
		SettledAt:   &now,
	}
	credit := &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    recipient.ID,
		Amount:      req.Amount,
		Type:        domain.TransactionTypeDeposit,
		Status:      domain.TransactionStatusSuccess,
		Description: fmt.Sprintf("Received from user %s", req.SenderUserID),
		CreatedAt:   now,
		SettledAt:   &now,
	}

	if err := s.txRepo.Create(ctx, dbTx, debit); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record debit: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, credit); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record credit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("sender_wallet", sender.ID.String()).
		Str("recipient_wallet", recipient.ID.String()).
		Int64("amount", req.Amount).
		Msg("internal transfer settled")

	return debit, nil
}

// lockPair acquires row locks on both wallets, lower wallet ID first, and
// returns them as (sender, recipient).
func (s *TransferServiceImpl) lockPair(ctx context.Context, dbTx pgx.Tx, senderID, recipientID uuid.UUID) (*domain.Wallet, *domain.Wallet, error) {
	first, second := senderID, recipientID
	if bytes.Compare(recipientID[:], senderID[:]) < 0 {
		first, second = recipientID, senderID
	}

	locked := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, id := range []uuid.UUID{first, second} {
		w, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if w == nil {
			return nil, nil, apperror.ErrNotFound("Wallet")
		}
		locked[id] = w
	}
	return locked[senderID], locked[recipientID], nil
}
