package integration

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrent_Transfers_NeverOverspend fires more concurrent transfers
// than the sender's balance covers. The row locks taken inside the
// transfer transaction serialize the balance re-check, so exactly the
// affordable number succeed and the balance never goes negative.
func TestConcurrent_Transfers_NeverOverspend(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	senderToken := app.token(t, uuid.New())
	app.createWallet(t, senderToken, "Ada Obi", "ada@example.com")
	app.fund(t, senderToken, 40_000)

	recipientToken := app.token(t, uuid.New())
	recipient := app.createWallet(t, recipientToken, "Bola Ade", "bola@example.com")

	// 10 x 5,000 = 50,000 requested against a 40,000 balance.
	concurrency := 10
	amount := int64(5_000)

	var wg sync.WaitGroup
	var successCount, failCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := app.doJSON(t, http.MethodPost, "/api/v1/transfers", senderToken, map[string]any{
				"account_number": recipient["account_number"],
				"bank_name":      recipient["bank_name"],
				"amount":         amount,
			})
			if status == http.StatusOK {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}
	wg.Wait()

	t.Logf("transfers: %d succeeded, %d failed", successCount.Load(), failCount.Load())

	assert.Equal(t, int64(8), successCount.Load(), "exactly the affordable transfers succeed")
	assert.Equal(t, int64(2), failCount.Load())

	senderBalance := app.balance(t, senderToken)
	recipientBalance := app.balance(t, recipientToken)
	assert.GreaterOrEqual(t, senderBalance, int64(0), "balance must never go negative")
	assert.Equal(t, int64(0), senderBalance)
	assert.Equal(t, int64(40_000), recipientBalance)
	assert.Equal(t, int64(40_000), senderBalance+recipientBalance, "funds are conserved")
}

// TestConcurrent_Transfers_DailyBudget fires concurrent transfers whose
// total exceeds the sender's daily tier budget but not the balance. The
// budget re-check under the lock admits exactly the allowed total.
func TestConcurrent_Transfers_DailyBudget(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	senderToken := app.token(t, uuid.New())
	app.createWallet(t, senderToken, "Ada Obi", "ada@example.com")
	app.fund(t, senderToken, 200_000)

	recipientToken := app.token(t, uuid.New())
	recipient := app.createWallet(t, recipientToken, "Bola Ade", "bola@example.com")

	// TIER_1 moves at most 50,000 per day: 12 x 5,000 = 60,000 requested.
	concurrency := 12
	amount := int64(5_000)

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var limitCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body := app.doJSON(t, http.MethodPost, "/api/v1/transfers", senderToken, map[string]any{
				"account_number": recipient["account_number"],
				"bank_name":      recipient["bank_name"],
				"amount":         amount,
			})
			switch status {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusUnprocessableEntity:
				if body["error_code"] == "LGR_004" {
					limitCount.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), successCount.Load(), "exactly the daily budget clears")
	assert.Equal(t, int64(2), limitCount.Load())
	assert.Equal(t, int64(150_000), app.balance(t, senderToken))
	assert.Equal(t, int64(50_000), app.balance(t, recipientToken))
}

// TestConcurrent_WebhookReplay_CreditsOnce delivers the same PAID
// collection webhook many times at once. The PENDING-only guard under the
// transaction row lock admits a single credit.
func TestConcurrent_WebhookReplay_CreditsOnce(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/wallets/fund", token, map[string]int64{"amount": 25_000})
	require.Equal(t, http.StatusOK, status)
	reference := body["data"].(map[string]interface{})["reference"].(string)

	payload := collectionWebhook(reference, 25_000, "PAID")

	concurrency := 20
	var wg sync.WaitGroup
	var acked atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if app.sendWebhook(t, "/api/v1/webhooks/collection", payload, "") == http.StatusOK {
				acked.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(concurrency), acked.Load(), "every delivery is acknowledged")
	assert.Equal(t, int64(25_000), app.balance(t, token), "the credit lands exactly once")
}

// TestConcurrent_BidirectionalTransfers_ConserveFunds runs transfers in
// both directions between two wallets at once and checks that no money is
// created or destroyed.
func TestConcurrent_BidirectionalTransfers_ConserveFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	tokenA := app.token(t, uuid.New())
	walletA := app.createWallet(t, tokenA, "Ada Obi", "ada@example.com")
	app.fund(t, tokenA, 50_000)

	tokenB := app.token(t, uuid.New())
	walletB := app.createWallet(t, tokenB, "Bola Ade", "bola@example.com")
	app.fund(t, tokenB, 50_000)

	perDirection := 10
	amount := int64(1_000)

	var wg sync.WaitGroup
	for i := 0; i < perDirection; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			app.doJSON(t, http.MethodPost, "/api/v1/transfers", tokenA, map[string]any{
				"account_number": walletB["account_number"],
				"bank_name":      walletB["bank_name"],
				"amount":         amount,
			})
		}()
		go func() {
			defer wg.Done()
			app.doJSON(t, http.MethodPost, "/api/v1/transfers", tokenB, map[string]any{
				"account_number": walletA["account_number"],
				"bank_name":      walletA["bank_name"],
				"amount":         amount,
			})
		}()
	}
	wg.Wait()

	balanceA := app.balance(t, tokenA)
	balanceB := app.balance(t, tokenB)

	assert.GreaterOrEqual(t, balanceA, int64(0))
	assert.GreaterOrEqual(t, balanceB, int64(0))
	assert.Equal(t, int64(100_000), balanceA+balanceB, "funds are conserved across concurrent transfers")
}
