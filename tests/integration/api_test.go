package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wallet-ledger/config"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	railAdapter "wallet-ledger/internal/adapter/rail"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	webhookSecret   = "test-rail-secret-key"
	signatureHeader = "monnify-signature"
)

// fakeRail stands in for the provider API. Reserved account numbers are
// sequential so every wallet gets a distinct 10-digit account, and
// payouts succeed unless a rejection message is queued.
type fakeRail struct {
	*httptest.Server
	mu         sync.Mutex
	accounts   int
	rejectNext string
}

func newFakeRail() *fakeRail {
	f := &fakeRail{}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeRailEnvelope(w, true, "", map[string]any{"accessToken": "rail-token", "expiresIn": 3600})
	})

	mux.HandleFunc("/api/v1/banks", func(w http.ResponseWriter, r *http.Request) {
		writeRailEnvelope(w, true, "", []map[string]string{
			{"name": "Wema Bank", "code": "035"},
			{"name": "Access Bank", "code": "044"},
		})
	})

	mux.HandleFunc("/api/v2/bank-transfer/reserved-accounts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.accounts++
		accountNumber := fmt.Sprintf("40%08d", f.accounts)
		f.mu.Unlock()
		writeRailEnvelope(w, true, "", map[string]any{
			"accounts": []map[string]string{
				{"accountNumber": accountNumber, "bankName": "Wema Bank"},
			},
		})
	})

	mux.HandleFunc("/api/v2/disbursements/single", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		reject := f.rejectNext
		f.rejectNext = ""
		f.mu.Unlock()
		if reject != "" {
			writeRailEnvelope(w, false, reject, nil)
			return
		}
		writeRailEnvelope(w, true, "", map[string]string{"status": "PENDING"})
	})

	mux.HandleFunc("/api/v1/merchant/transactions/init-transaction", func(w http.ResponseWriter, r *http.Request) {
		writeRailEnvelope(w, true, "", map[string]string{"checkoutUrl": "https://checkout.example.com/session"})
	})

	f.Server = httptest.NewServer(mux)
	return f
}

func (f *fakeRail) rejectNextPayout(message string) {
	f.mu.Lock()
	f.rejectNext = message
	f.mu.Unlock()
}

func writeRailEnvelope(w http.ResponseWriter, ok bool, message string, body any) {
	raw, _ := json.Marshal(body)
	resp := map[string]any{
		"requestSuccessful": ok,
		"responseMessage":   message,
		"responseBody":      json.RawMessage(raw),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// testApp wires the real HTTP layer, services, rail client and Redis
// stores (via miniredis) on top of in-memory repositories. Only the
// database is faked; every request crosses the same boundaries it would
// in production.
type testApp struct {
	server   *httptest.Server
	rail     *fakeRail
	redis    *miniredis.Miniredis
	tokenSvc *service.JWTTokenService
	signer   *service.HMACSignatureVerifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	bankCache := redisStorage.NewBankDirectoryCache(rdb)

	railSrv := newFakeRail()
	railCfg := config.RailConfig{
		BaseURL:         railSrv.URL,
		APIKey:          "test-api-key",
		SecretKey:       webhookSecret,
		ContractCode:    "100693167467",
		SourceAccount:   "3934178936",
		RedirectURL:     "https://app.example.com/wallet",
		Currency:        "NGN",
		SignatureHeader: signatureHeader,
		Timeout:         5 * time.Second,
		BankCacheTTL:    time.Hour,
	}

	log := logger.New("debug", false)
	railClient := railAdapter.NewClient(railCfg, bankCache, log)

	walletRepo := newInMemoryWalletRepo()
	txRepo := newInMemoryTransactionRepo()
	transactor := newInMemoryTransactor()

	verifier := service.NewHMACSignatureVerifier(webhookSecret)
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	walletSvc := service.NewWalletService(walletRepo, txRepo, railClient, log)
	transferSvc := service.NewTransferService(walletRepo, txRepo, transactor, log)
	disbursementSvc := service.NewDisbursementService(walletRepo, txRepo, transactor, railClient, log)
	fundingSvc := service.NewFundingService(walletRepo, txRepo, transactor, railClient, log)
	reconcilerSvc := service.NewReconcilerService(verifier, walletRepo, txRepo, transactor, log)

	// Rate limiting stays off here; the middleware has its own tests and
	// the concurrency suites fire more requests per minute than any rule
	// allows.
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:       walletSvc,
		TransferSvc:     transferSvc,
		DisbursementSvc: disbursementSvc,
		FundingSvc:      fundingSvc,
		ReconcilerSvc:   reconcilerSvc,
		TokenSvc:        tokenSvc,
		SignatureHeader: signatureHeader,
		Logger:          log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:   server,
		rail:     railSrv,
		redis:    mr,
		tokenSvc: tokenSvc,
		signer:   verifier,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.rail.Close()
	a.redis.Close()
}

// --- Helpers ---

func (a *testApp) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := a.tokenSvc.Generate(userID)
	require.NoError(t, err)
	return token
}

func (a *testApp) doJSON(t *testing.T, method, path, token string, body any) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", string(raw))
	}
	return resp.StatusCode, decoded
}

func (a *testApp) createWallet(t *testing.T, token, name, email string) map[string]interface{} {
	t.Helper()
	status, body := a.doJSON(t, http.MethodPost, "/api/v1/wallets", token, map[string]string{
		"name":  name,
		"email": email,
	})
	require.Equal(t, http.StatusCreated, status, "create wallet: %v", body)
	return body["data"].(map[string]interface{})
}

func (a *testApp) balance(t *testing.T, token string) int64 {
	t.Helper()
	status, body := a.doJSON(t, http.MethodGet, "/api/v1/wallets/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	return int64(data["balance"].(float64))
}

// sendWebhook signs payload with the shared rail secret unless an
// explicit signature is given.
func (a *testApp) sendWebhook(t *testing.T, path string, payload []byte, signature string) int {
	t.Helper()
	if signature == "" {
		signature = a.signer.Sign(payload)
	}
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signature)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body)
	return resp.StatusCode
}

// fund credits a wallet by initiating a deposit and delivering the PAID
// collection webhook for its reference.
func (a *testApp) fund(t *testing.T, token string, amount int64) {
	t.Helper()
	status, body := a.doJSON(t, http.MethodPost, "/api/v1/wallets/fund", token, map[string]int64{"amount": amount})
	require.Equal(t, http.StatusOK, status, "fund: %v", body)
	data := body["data"].(map[string]interface{})
	reference := data["reference"].(string)
	require.NotEmpty(t, reference)

	payload := collectionWebhook(reference, amount, "PAID")
	require.Equal(t, http.StatusOK, a.sendWebhook(t, "/api/v1/webhooks/collection", payload, ""))
}

func collectionWebhook(reference string, amount int64, status string) []byte {
	payload, _ := json.Marshal(map[string]any{
		"eventData": map[string]any{
			"paymentReference": reference,
			"amountPaid":       amount,
			"paymentStatus":    status,
		},
	})
	return payload
}

func disbursementWebhook(reference string, amount int64, status string) []byte {
	payload, _ := json.Marshal(map[string]any{
		"eventData": map[string]any{
			"reference": reference,
			"amount":    amount,
			"status":    status,
		},
	})
	return payload
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_CreateWalletAndGet(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	wallet := app.createWallet(t, token, "Ada Obi", "ada@example.com")

	assert.Equal(t, float64(0), wallet["balance"])
	assert.Equal(t, "TIER_1", wallet["tier"])
	assert.Len(t, wallet["account_number"].(string), 10)
	assert.Equal(t, "Wema Bank", wallet["bank_name"])

	status, body := app.doJSON(t, http.MethodGet, "/api/v1/wallets/me", token, nil)
	assert.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, wallet["account_number"], data["account_number"])
}

func TestIntegration_CreateWallet_Duplicate(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/wallets", token, map[string]string{
		"name":  "Ada Obi",
		"email": "ada@example.com",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "LGR_007", body["error_code"])
}

func TestIntegration_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	status, _ := app.doJSON(t, http.MethodGet, "/api/v1/wallets/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestIntegration_FundAndCollectionSettlement(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")

	app.fund(t, token, 50_000)
	assert.Equal(t, int64(50_000), app.balance(t, token))

	// The ledger shows one settled deposit.
	status, body := app.doJSON(t, http.MethodGet, "/api/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	item := data["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "DEPOSIT", item["type"])
	assert.Equal(t, "SUCCESS", item["status"])
}

func TestIntegration_CollectionWebhook_Replay(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/wallets/fund", token, map[string]int64{"amount": 40_000})
	require.Equal(t, http.StatusOK, status)
	reference := body["data"].(map[string]interface{})["reference"].(string)

	payload := collectionWebhook(reference, 40_000, "PAID")
	require.Equal(t, http.StatusOK, app.sendWebhook(t, "/api/v1/webhooks/collection", payload, ""))
	require.Equal(t, http.StatusOK, app.sendWebhook(t, "/api/v1/webhooks/collection", payload, ""))
	require.Equal(t, http.StatusOK, app.sendWebhook(t, "/api/v1/webhooks/collection", payload, ""))

	assert.Equal(t, int64(40_000), app.balance(t, token), "replayed webhook must credit exactly once")
}

func TestIntegration_CollectionWebhook_ForgedSignature(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/wallets/fund", token, map[string]int64{"amount": 40_000})
	require.Equal(t, http.StatusOK, status)
	reference := body["data"].(map[string]interface{})["reference"].(string)

	payload := collectionWebhook(reference, 40_000, "PAID")
	assert.Equal(t, http.StatusForbidden, app.sendWebhook(t, "/api/v1/webhooks/collection", payload, "deadbeef"))
	assert.Equal(t, int64(0), app.balance(t, token))
}

func TestIntegration_Funding_TierCapRefused(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")
	app.fund(t, token, 290_000)

	// TIER_1 caps the balance at 300,000.
	status, body := app.doJSON(t, http.MethodPost, "/api/v1/wallets/fund", token, map[string]int64{"amount": 20_000})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "LGR_005", body["error_code"])
}

func TestIntegration_InternalTransfer(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	senderToken := app.token(t, uuid.New())
	app.createWallet(t, senderToken, "Ada Obi", "ada@example.com")
	app.fund(t, senderToken, 50_000)

	recipientToken := app.token(t, uuid.New())
	recipient := app.createWallet(t, recipientToken, "Bola Ade", "bola@example.com")

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/transfers", senderToken, map[string]any{
		"account_number": recipient["account_number"],
		"bank_name":      recipient["bank_name"],
		"amount":         30_000,
	})
	require.Equal(t, http.StatusOK, status, "transfer: %v", body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "TRANSFER", data["type"])
	assert.Equal(t, "SUCCESS", data["status"])

	assert.Equal(t, int64(20_000), app.balance(t, senderToken))
	assert.Equal(t, int64(30_000), app.balance(t, recipientToken))
}

func TestIntegration_InternalTransfer_InsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	senderToken := app.token(t, uuid.New())
	app.createWallet(t, senderToken, "Ada Obi", "ada@example.com")
	app.fund(t, senderToken, 10_000)

	recipientToken := app.token(t, uuid.New())
	recipient := app.createWallet(t, recipientToken, "Bola Ade", "bola@example.com")

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/transfers", senderToken, map[string]any{
		"account_number": recipient["account_number"],
		"bank_name":      recipient["bank_name"],
		"amount":         10_001,
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "LGR_001", body["error_code"])
	assert.Equal(t, int64(10_000), app.balance(t, senderToken))
}

func TestIntegration_InternalTransfer_DailyLimit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	senderToken := app.token(t, uuid.New())
	app.createWallet(t, senderToken, "Ada Obi", "ada@example.com")
	app.fund(t, senderToken, 60_000)

	recipientToken := app.token(t, uuid.New())
	recipient := app.createWallet(t, recipientToken, "Bola Ade", "bola@example.com")

	transfer := func(amount int64) (int, map[string]interface{}) {
		return app.doJSON(t, http.MethodPost, "/api/v1/transfers", senderToken, map[string]any{
			"account_number": recipient["account_number"],
			"bank_name":      recipient["bank_name"],
			"amount":         amount,
		})
	}

	status, _ := transfer(48_000)
	require.Equal(t, http.StatusOK, status)

	// 48,000 + 5,000 breaches the TIER_1 daily limit of 50,000.
	status, body := transfer(5_000)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "LGR_004", body["error_code"])
	assert.Equal(t, int64(12_000), app.balance(t, senderToken))
}

func TestIntegration_Disbursement_AcceptedThenSettled(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")
	app.fund(t, token, 10_000)

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/transfers/bank", token, map[string]any{
		"account_number": "0123456789",
		"bank_name":      "Access Bank",
		"amount":         3_000,
		"narration":      "Rent",
	})
	require.Equal(t, http.StatusAccepted, status, "disburse: %v", body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "BANK_TRANSFER", data["type"])
	assert.Equal(t, "PENDING", data["status"])
	reference := data["reference"].(string)
	require.NotEmpty(t, reference)

	// Debited at initiation.
	assert.Equal(t, int64(7_000), app.balance(t, token))

	// Success settlement keeps the balance unchanged.
	payload := disbursementWebhook(reference, 3_000, "SUCCESS")
	require.Equal(t, http.StatusOK, app.sendWebhook(t, "/api/v1/webhooks/disbursement", payload, ""))
	assert.Equal(t, int64(7_000), app.balance(t, token))
}

func TestIntegration_Disbursement_FailureWebhookRefunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")
	app.fund(t, token, 10_000)

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/transfers/bank", token, map[string]any{
		"account_number": "0123456789",
		"bank_name":      "Access Bank",
		"amount":         3_000,
	})
	require.Equal(t, http.StatusAccepted, status)
	reference := body["data"].(map[string]interface{})["reference"].(string)
	require.Equal(t, int64(7_000), app.balance(t, token))

	payload := disbursementWebhook(reference, 3_000, "FAILED")
	require.Equal(t, http.StatusOK, app.sendWebhook(t, "/api/v1/webhooks/disbursement", payload, ""))
	assert.Equal(t, int64(10_000), app.balance(t, token), "failed payout must credit the debit back")

	// Replay of the failure must not refund twice.
	require.Equal(t, http.StatusOK, app.sendWebhook(t, "/api/v1/webhooks/disbursement", payload, ""))
	assert.Equal(t, int64(10_000), app.balance(t, token))
}

func TestIntegration_Disbursement_ProviderRejectionCompensates(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")
	app.fund(t, token, 10_000)

	app.rail.rejectNextPayout("Insufficient provider float")

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/transfers/bank", token, map[string]any{
		"account_number": "0123456789",
		"bank_name":      "Access Bank",
		"amount":         3_000,
	})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "RAIL_001", body["error_code"])

	// The compensating credit restored the debit.
	assert.Equal(t, int64(10_000), app.balance(t, token))

	// The ledger keeps the FAILED attempt.
	status, listBody := app.doJSON(t, http.MethodGet, "/api/v1/transactions?type=BANK_TRANSFER", token, nil)
	require.Equal(t, http.StatusOK, status)
	listData := listBody["data"].(map[string]interface{})
	require.Equal(t, float64(1), listData["total"])
	item := listData["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "FAILED", item["status"])
}

func TestIntegration_Disbursement_UnknownBank(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")
	app.fund(t, token, 10_000)

	status, body := app.doJSON(t, http.MethodPost, "/api/v1/transfers/bank", token, map[string]any{
		"account_number": "0123456789",
		"bank_name":      "Galactic Bank",
		"amount":         3_000,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "LGR_006", body["error_code"])
	assert.Equal(t, int64(10_000), app.balance(t, token), "no debit before bank resolution")
}

func TestIntegration_Statement_Filters(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, uuid.New())
	app.createWallet(t, token, "Ada Obi", "ada@example.com")
	app.fund(t, token, 50_000)

	recipientToken := app.token(t, uuid.New())
	recipient := app.createWallet(t, recipientToken, "Bola Ade", "bola@example.com")

	status, _ := app.doJSON(t, http.MethodPost, "/api/v1/transfers", token, map[string]any{
		"account_number": recipient["account_number"],
		"bank_name":      recipient["bank_name"],
		"amount":         10_000,
	})
	require.Equal(t, http.StatusOK, status)

	status, body := app.doJSON(t, http.MethodGet, "/api/v1/transactions?type=TRANSFER", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])

	status, body = app.doJSON(t, http.MethodGet, "/api/v1/transactions?status=SUCCESS", token, nil)
	require.Equal(t, http.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"], "deposit and transfer debit are both settled")
}
