package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"tooma/internal/pkg/logging"
)

// Gateway is what the upload and buyer services need from a payment provider.
type Gateway interface {
	Initiate(ctx context.Context, file FileRef, amount, email, callbackURL string) (string, error)
	Verify(ctx context.Context, reference string) (bool, map[string]any)
}

type Config struct {
	SecretKey string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

// Client talks to the Paystack transaction API.
type Client struct {
	secretKey  string
	baseURL    string
	currency   string
	httpClient *http.Client
	log        logging.Logger

	newReference func() string
}

func NewClient(cfg Config, log logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		secretKey:    cfg.SecretKey,
		baseURL:      cfg.BaseURL,
		currency:     cfg.Currency,
		httpClient:   &http.Client{Timeout: timeout},
		log:          log,
		newReference: uuid.NewString,
	}
}

// Initiate opens a hosted checkout and returns its URL. Email is sent only
// when non-empty.
func (c *Client) Initiate(ctx context.Context, file FileRef, amount, email, callbackURL string) (string, error) {
	if c.secretKey == "" {
		return "", ErrNotConfigured
	}
	minor, err := ToMinorUnits(amount)
	if err != nil {
		return "", err
	}

	reqBody := initializeRequest{
		Reference: c.newReference(),
		Amount:    minor,
		Currency:  c.currency,
		Metadata: initializeMeta{
			FileUploadID: file.ID,
			UniqueID:     file.UniqueID,
		},
		CallbackURL: callbackURL,
		Email:       email,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrInitiationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInitiationFailed, err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("paystack initialize request failed", "reference", reqBody.Reference, "err", err)
		return "", fmt.Errorf("%w: %v", ErrInitiationFailed, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("paystack initialize rejected", "reference", reqBody.Reference, "status", resp.StatusCode, "body", string(raw))
		return "", fmt.Errorf("%w: gateway status %d", ErrInitiationFailed, resp.StatusCode)
	}

	var out initializeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Error("paystack initialize response unreadable", "reference", reqBody.Reference, "body", string(raw))
		return "", fmt.Errorf("%w: decode response: %v", ErrInitiationFailed, err)
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		c.log.Error("paystack initialize unsuccessful", "reference", reqBody.Reference, "message", out.Message)
		return "", fmt.Errorf("%w: %s", ErrInitiationFailed, out.Message)
	}

	c.log.Info("paystack transaction initialized", "reference", reqBody.Reference, "unique_id", file.UniqueID, "amount", minor)
	return out.Data.AuthorizationURL, nil
}

// Verify asks the gateway about a transaction. It reports success only for
// HTTP 200 with status=true and data.status="success"; any other outcome,
// including transport errors, is (false, whatever body was read).
func (c *Client) Verify(ctx context.Context, reference string) (bool, map[string]any) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return false, nil
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("paystack verify request failed", "reference", reference, "err", err)
		return false, nil
	}
	defer resp.Body.Close()

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.log.Warn("paystack verify response unreadable", "reference", reference, "status", resp.StatusCode, "err", err)
		return false, data
	}
	if resp.StatusCode != http.StatusOK {
		return false, data
	}
	return isSuccessful(data), data
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
}

func isSuccessful(data map[string]any) bool {
	status, _ := data["status"].(bool)
	if !status {
		return false
	}
	inner, _ := data["data"].(map[string]any)
	txStatus, _ := inner["status"].(string)
	return txStatus == "success"
}
