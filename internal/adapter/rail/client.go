package rail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// BankCache caches the provider's bank directory between refreshes.
type BankCache interface {
	Get(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, banks map[string]string, ttl time.Duration) error
}

// Client implements ports.RailClient against the provider's REST API.
// Authentication uses a short-lived bearer token obtained with basic
// credentials; the token is cached and refreshed lazily under a mutex.
type Client struct {
	cfg        config.RailConfig
	httpClient *http.Client
	banks      BankCache
	log        zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a rail client.
func NewClient(cfg config.RailConfig, banks BankCache, log zerolog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		banks:      banks,
		log:        log,
	}
}

// apiEnvelope is the provider's uniform response wrapper.
type apiEnvelope struct {
	RequestSuccessful bool            `json:"requestSuccessful"`
	ResponseMessage   string          `json:"responseMessage"`
	ResponseBody      json.RawMessage `json:"responseBody"`
}

// accessToken refreshes the cached bearer token when it is expired or
// about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/v1/auth/login", nil)
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	creds := base64.StdEncoding.EncodeToString([]byte(c.cfg.APIKey + ":" + c.cfg.SecretKey))
	req.Header.Set("Authorization", "Basic "+creds)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.RequestSuccessful {
		return "", fmt.Errorf("login rejected: %s", env.ResponseMessage)
	}

	var body struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int64  `json:"expiresIn"`
	}
	if err := json.Unmarshal(env.ResponseBody, &body); err != nil {
		return "", fmt.Errorf("decode login body: %w", err)
	}

	c.token = body.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	c.log.Debug().Time("expires_at", c.tokenExpiry).Msg("rail token refreshed")
	return c.token, nil
}

// call performs an authorized JSON request and decodes the envelope.
func (c *Client) call(ctx context.Context, method, path string, payload any) (*apiEnvelope, int, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, 0, err
	}

	var bodyReader *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response for %s: %w", path, err)
	}
	return &env, resp.StatusCode, nil
}

// CreateReservedAccount provisions a dedicated virtual account bound to
// the wallet's account reference.
func (c *Client) CreateReservedAccount(ctx context.Context, req ports.ReservedAccountRequest) (*ports.ReservedAccount, error) {
	payload := map[string]any{
		"accountReference":     req.AccountReference,
		"accountName":          req.Name,
		"customerName":         req.Name,
		"customerEmail":        req.Email,
		"currencyCode":         c.cfg.Currency,
		"contractCode":         c.cfg.ContractCode,
		"getAllAvailableBanks": true,
	}

	env, status, err := c.call(ctx, http.MethodPost, "/api/v2/bank-transfer/reserved-accounts", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !env.RequestSuccessful {
		return nil, fmt.Errorf("reserve account rejected: %s", env.ResponseMessage)
	}

	var body struct {
		Accounts []struct {
			AccountNumber string `json:"accountNumber"`
			BankName      string `json:"bankName"`
		} `json:"accounts"`
	}
	if err := json.Unmarshal(env.ResponseBody, &body); err != nil {
		return nil, fmt.Errorf("decode reserved account: %w", err)
	}
	if len(body.Accounts) == 0 {
		return nil, fmt.Errorf("reserve account: provider returned no accounts")
	}

	return &ports.ReservedAccount{
		AccountNumber: body.Accounts[0].AccountNumber,
		BankName:      body.Accounts[0].BankName,
	}, nil
}

// ResolveBankCode maps a human bank name to the provider's bank code,
// consulting the cached directory first. Lookup is case-insensitive.
func (c *Client) ResolveBankCode(ctx context.Context, bankName string) (string, error) {
	directory, err := c.banks.Get(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("bank directory cache unavailable, fetching from provider")
	}
	if directory == nil {
		directory, err = c.fetchBankDirectory(ctx)
		if err != nil {
			return "", err
		}
		if cacheErr := c.banks.Set(ctx, directory, c.cfg.BankCacheTTL); cacheErr != nil {
			c.log.Warn().Err(cacheErr).Msg("bank directory cache write failed")
		}
	}

	needle := strings.ToLower(strings.TrimSpace(bankName))
	if code, ok := directory[needle]; ok {
		return code, nil
	}
	// Fall back to a substring match so "Wema" still resolves "Wema Bank".
	for name, code := range directory {
		if strings.Contains(name, needle) {
			return code, nil
		}
	}
	return "", apperror.ErrInvalidBankName(bankName)
}

// fetchBankDirectory downloads the bank list and indexes it by lowercase
// bank name.
func (c *Client) fetchBankDirectory(ctx context.Context) (map[string]string, error) {
	env, status, err := c.call(ctx, http.MethodGet, "/api/v1/banks", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !env.RequestSuccessful {
		return nil, fmt.Errorf("fetch banks rejected: %s", env.ResponseMessage)
	}

	var banks []struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := json.Unmarshal(env.ResponseBody, &banks); err != nil {
		return nil, fmt.Errorf("decode bank list: %w", err)
	}

	directory := make(map[string]string, len(banks))
	for _, b := range banks {
		directory[strings.ToLower(b.Name)] = b.Code
	}
	return directory, nil
}

// InitiatePayout submits a single disbursement. A well-formed provider
// response with requestSuccessful=false is a definite rejection and comes
// back as apperror RAIL_001; transport and decode failures stay untyped
// because the payout outcome is unknown.
func (c *Client) InitiatePayout(ctx context.Context, req ports.PayoutRequest) error {
	payload := map[string]any{
		"amount":                   req.Amount,
		"reference":                req.Reference,
		"narration":                req.Narration,
		"destinationBankCode":      req.DestinationBank,
		"destinationAccountNumber": req.DestinationAccount,
		"currency":                 c.cfg.Currency,
		"sourceAccountNumber":      c.cfg.SourceAccount,
	}

	env, _, err := c.call(ctx, http.MethodPost, "/api/v2/disbursements/single", payload)
	if err != nil {
		return err
	}
	if !env.RequestSuccessful {
		return apperror.ErrPayoutRejected(env.ResponseMessage)
	}

	c.log.Info().Str("reference", req.Reference).Msg("payout submitted")
	return nil
}

// CreatePaymentLink initializes a hosted checkout session and returns its
// URL.
func (c *Client) CreatePaymentLink(ctx context.Context, req ports.PaymentLinkRequest) (string, error) {
	payload := map[string]any{
		"amount":             req.Amount,
		"customerName":       req.Name,
		"customerEmail":      req.Email,
		"paymentReference":   req.Reference,
		"paymentDescription": "Wallet top-up",
		"currencyCode":       c.cfg.Currency,
		"contractCode":       c.cfg.ContractCode,
		"redirectUrl":        c.cfg.RedirectURL,
	}

	env, status, err := c.call(ctx, http.MethodPost, "/api/v1/merchant/transactions/init-transaction", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || !env.RequestSuccessful {
		return "", fmt.Errorf("init transaction rejected: %s", env.ResponseMessage)
	}

	var body struct {
		CheckoutURL string `json:"checkoutUrl"`
	}
	if err := json.Unmarshal(env.ResponseBody, &body); err != nil {
		return "", fmt.Errorf("decode checkout url: %w", err)
	}
	return body.CheckoutURL, nil
}
