/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"github.com/shopspring/decimal"
)

// DepositRequest is the body of POST /wallet/deposit
type DepositRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"omitempty,len=3,alpha"`
}

// DepositResponse carries the hosted checkout URL
type DepositResponse struct {
	Url string `json:"url"`
}

// WithdrawRequest is the body of POST /wallet/withdraw
type WithdrawRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	BankAccountId string          `json:"bank_account_id" validate:"required"`
}

// WithdrawResponse reports the completed withdrawal
type WithdrawResponse struct {
	Success     bool               `json:"success"`
	Transaction *WalletTransaction `json:"transaction"`
}

// BankAccountRequest is the body of POST /wallet/bank-accounts
type BankAccountRequest struct {
	BankName          string `json:"bank_name" validate:"required,max=120"`
	AccountHolderName string `json:"account_holder_name" validate:"required,max=120"`
	Iban              string `json:"iban" validate:"required,min=15,max=42"`
	IsDefault         bool   `json:"is_default"`
}

// SecurityDepositAction is the body of POST /wallet/security-deposits.
// Action is "release" (default) or "lock".
type SecurityDepositAction struct {
	Action          string              `json:"action" validate:"omitempty,oneof=release lock"`
	DepositId       string              `json:"deposit_id"`
	TenancyId       string              `json:"tenancy_id"`
	Amount          decimal.Decimal     `json:"amount"`
	ReleaseAmount   decimal.NullDecimal `json:"release_amount"`
	DeductionReason string              `json:"deduction_reason" validate:"max=500"`
}

// MoneyRequestAction is the body of POST /wallet/money-requests.
// Tenants fill the creation fields, landlords the decision fields.
type MoneyRequestAction struct {
	TenancyId string          `json:"tenancy_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason" validate:"max=1000"`
	Category  RequestCategory `json:"category"`

	RequestId string   `json:"request_id"`
	Action    Decision `json:"action"`
	Note      string   `json:"note" validate:"max=1000"`
}

// SettingsRequest is the body of POST /wallet/settings
type SettingsRequest struct {
	AutoPayout    *bool `json:"auto_payout"`
	InstantPayout *bool `json:"instant_payout"`
}

// RentRequest is the body of POST /wallet/rent
type RentRequest struct {
	TenancyId string `json:"tenancy_id" validate:"required"`
}

// InvitationRequest is the body of POST /invitations
type InvitationRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	FullName   string          `json:"full_name" validate:"max=120"`
	Phone      string          `json:"phone" validate:"max=40"`
	PropertyId string          `json:"property_id"`
	Unit       string          `json:"unit" validate:"max=40"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	Currency   string          `json:"currency" validate:"omitempty,len=3,alpha"`
}

// InvitationResponse is returned when an invitation is created
type InvitationResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// TransactionPage is a window over a wallet's transaction history
type TransactionPage struct {
	Transactions []WalletTransaction `json:"transactions"`
	Total        int                 `json:"total"`
	Limit        int                 `json:"limit"`
	Offset       int                 `json:"offset"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
