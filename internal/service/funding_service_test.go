package service

import (
	"context"
	"fmt"
	"testing"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fundingTestDeps struct {
	svc        *FundingServiceImpl
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	transactor *mocks.MockDBTransactor
	rail       *mocks.MockRailClient
	ctrl       *gomock.Controller
}

func setupFundingService(t *testing.T) *fundingTestDeps {
	ctrl := gomock.NewController(t)
	d := &fundingTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		rail:       mocks.NewMockRailClient(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewFundingService(d.walletRepo, d.txRepo, d.transactor, d.rail, zerolog.Nop())
	return d
}

func TestFundingService_InitiateDeposit_Success(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	walletID := uuid.New()
	tx := &mockTx{}
	wallet := &domain.Wallet{ID: walletID, UserID: userID, Balance: 5_000, Tier: domain.TierOne}

	d.walletRepo.EXPECT().GetByUserID(ctx, userID).Return(wallet, nil)
	d.rail.EXPECT().CreatePaymentLink(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.PaymentLinkRequest) (string, error) {
			assert.Equal(t, int64(20_000), req.Amount)
			assert.Contains(t, req.Reference, "wallet_topup_"+userID.String())
			return "https://checkout.example.com/abc123", nil
		})
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ interface{}, txn *domain.Transaction) error {
			assert.Equal(t, walletID, txn.WalletID)
			assert.Equal(t, domain.TransactionTypeDeposit, txn.Type)
			assert.Equal(t, domain.TransactionStatusPending, txn.Status)
			assert.Equal(t, int64(20_000), txn.Amount)
			return nil
		})

	intent, err := d.svc.InitiateDeposit(ctx, ports.FundingRequest{UserID: userID, Amount: 20_000})
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, "https://checkout.example.com/abc123", intent.PaymentLink)
	assert.Contains(t, intent.Reference, "wallet_topup_"+userID.String())
}

func TestFundingService_InitiateDeposit_InvalidAmount(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	intent, err := d.svc.InitiateDeposit(context.Background(), ports.FundingRequest{UserID: uuid.New(), Amount: 0})
	assert.Nil(t, intent)
	assertAppError(t, err, "LGR_002")
}

func TestFundingService_InitiateDeposit_WalletNotFound(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	d.walletRepo.EXPECT().GetByUserID(ctx, userID).Return(nil, nil)

	intent, err := d.svc.InitiateDeposit(ctx, ports.FundingRequest{UserID: userID, Amount: 5_000})
	assert.Nil(t, intent)
	assertAppError(t, err, "LGR_003")
}

func TestFundingService_InitiateDeposit_BalanceCapExceeded(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	// TIER_1 caps the balance at 300000.
	wallet := &domain.Wallet{ID: uuid.New(), UserID: userID, Balance: 290_000, Tier: domain.TierOne}
	d.walletRepo.EXPECT().GetByUserID(ctx, userID).Return(wallet, nil)

	intent, err := d.svc.InitiateDeposit(ctx, ports.FundingRequest{UserID: userID, Amount: 20_000})
	assert.Nil(t, intent)
	assertAppError(t, err, "LGR_005")
}

func TestFundingService_InitiateDeposit_RailUnavailable(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), UserID: userID, Balance: 0, Tier: domain.TierOne}

	d.walletRepo.EXPECT().GetByUserID(ctx, userID).Return(wallet, nil)
	d.rail.EXPECT().CreatePaymentLink(ctx, gomock.Any()).Return("", fmt.Errorf("503 service unavailable"))

	intent, err := d.svc.InitiateDeposit(ctx, ports.FundingRequest{UserID: userID, Amount: 5_000})
	assert.Nil(t, intent)
	assertAppError(t, err, "RAIL_002")
}
