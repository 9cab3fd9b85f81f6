package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

const (
	// EventCheckoutCompleted is sent once a hosted checkout has been paid
	EventCheckoutCompleted = "checkout.session.completed"

	// MetadataType marks sessions created for wallet top-ups
	MetadataType          = "type"
	MetadataWalletId      = "wallet_id"
	MetadataUserId        = "user_id"
	MetadataWalletDeposit = "wallet_deposit"
)

// PaymentGateway is the External Payment Gateway as seen by the wallet.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CreatePayout(ctx context.Context, params PayoutParams) (*Payout, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*Event, error)
}

type CustomerParams struct {
	Email    string            `json:"email"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type Customer struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

// CheckoutParams describes a hosted checkout. Amount is in minor units.
type CheckoutParams struct {
	CustomerId string            `json:"customer"`
	Amount     int64             `json:"amount"`
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata"`
}

type CheckoutSession struct {
	Id            string            `json:"id"`
	Url           string            `json:"url"`
	Customer      string            `json:"customer"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// PayoutParams describes a bank transfer. Amount is in minor units.
type PayoutParams struct {
	Amount            int64             `json:"amount"`
	Currency          string            `json:"currency"`
	Iban              string            `json:"iban"`
	AccountHolderName string            `json:"account_holder_name"`
	Reference         string            `json:"reference"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type Payout struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

// Event is a verified webhook delivery
type Event struct {
	Id      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a webhook envelope. It does not check the signature.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("webhook event %q has no type", event.Id)
	}
	return &event, nil
}

// CheckoutSession decodes the event object of a checkout event
func (e *Event) CheckoutSession() (*CheckoutSession, error) {
	if len(e.Data.Object) == 0 {
		return nil, fmt.Errorf("event %s has no object", e.Id)
	}
	var session CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

// IsWalletDeposit reports whether the session was opened for a wallet top-up
func (s *CheckoutSession) IsWalletDeposit() bool {
	return s.Metadata[MetadataType] == MetadataWalletDeposit &&
		s.Metadata[MetadataWalletId] != "" &&
		s.Metadata[MetadataUserId] != ""
}

// APIError is a non-2xx gateway response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment gateway returned %d: %s", e.StatusCode, e.Message)
}
