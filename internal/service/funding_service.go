package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FundingServiceImpl implements ports.FundingService. Initiating a deposit
// never mutates the balance: the wallet is credited only when the
// collection webhook confirms payment.
type FundingServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	rail       ports.RailClient
	log        zerolog.Logger
}

// NewFundingService creates a new FundingServiceImpl.
func NewFundingService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	rail ports.RailClient,
	log zerolog.Logger,
) *FundingServiceImpl {
	return &FundingServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		rail:       rail,
		log:        log,
	}
}

// InitiateDeposit validates the tier cap, requests a hosted payment link
// and records the PENDING deposit carrying the funding reference.
func (s *FundingServiceImpl) InitiateDeposit(ctx context.Context, req ports.FundingRequest) (*ports.FundingIntent, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	if !wallet.CanCredit(req.Amount) {
		return nil, apperror.ErrBalanceCapExceeded(string(wallet.Tier))
	}

	reference := fmt.Sprintf("wallet_topup_%s_%d", req.UserID, time.Now().UnixMilli())

	link, err := s.rail.CreatePaymentLink(ctx, ports.PaymentLinkRequest{
		Reference: reference,
		Amount:    req.Amount,
	})
	if err != nil {
		return nil, apperror.ErrRailUnavailable(fmt.Errorf("create payment link: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn := &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		Amount:      req.Amount,
		Type:        domain.TransactionTypeDeposit,
		Reference:   &reference,
		Status:      domain.TransactionStatusPending,
		Description: "Wallet top-up initiated",
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record deposit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", reference).
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", req.Amount).
		Msg("deposit initiated")

	return &ports.FundingIntent{PaymentLink: link, Reference: reference}, nil
}
