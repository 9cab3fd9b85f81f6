package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"property-wallet-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const defaultWebhookTolerance = 5 * time.Minute

// Compile-time check: *Client must satisfy PaymentGateway.
var _ PaymentGateway = (*Client)(nil)

// Client talks to the gateway's JSON REST API
type Client struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	tolerance     time.Duration
	httpClient    *http.Client
	now           func() time.Time
}

func NewClient(cfg models.GatewayConfig) (*Client, error) {
	if cfg.BaseURL == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("gateway config requires BaseURL and SecretKey")
	}

	httpClient, err := createCustomHttpClient(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	tolerance := cfg.WebhookTolerance
	if tolerance <= 0 {
		tolerance = defaultWebhookTolerance
	}

	zap.L().Info("Payment gateway client initialized", zap.String("base_url", cfg.BaseURL))
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		tolerance:     tolerance,
		httpClient:    httpClient,
		now:           time.Now,
	}, nil
}

func createCustomHttpClient(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

func (c *Client) CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/v1/customers", params, &customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	zap.L().Info("Created gateway customer", zap.String("customer_id", customer.Id))
	return &customer, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	params.Currency = strings.ToLower(params.Currency)

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", params, &session); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if session.Url == "" {
		return nil, fmt.Errorf("checkout session %s has no url", session.Id)
	}

	zap.L().Info("Created checkout session",
		zap.String("session_id", session.Id),
		zap.Int64("amount", params.Amount),
		zap.String("currency", params.Currency))
	return &session, nil
}

func (c *Client) CreatePayout(ctx context.Context, params PayoutParams) (*Payout, error) {
	params.Currency = strings.ToLower(params.Currency)

	var payout Payout
	if err := c.do(ctx, http.MethodPost, "/v1/payouts", params, &payout); err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	zap.L().Info("Created payout",
		zap.String("payout_id", payout.Id),
		zap.String("status", payout.Status),
		zap.String("reference", params.Reference))
	return &payout, nil
}

// VerifyWebhook authenticates a delivery and decodes its event envelope.
func (c *Client) VerifyWebhook(payload []byte, signatureHeader string) (*Event, error) {
	if err := verifySignature(payload, signatureHeader, c.webhookSecret, c.tolerance, c.now()); err != nil {
		return nil, err
	}
	return ParseEvent(payload)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Warn("Failed to close response body", zap.Error(err))
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
		zap.L().Warn("Payment gateway error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
