package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the application-side view of an identity provider user
type Profile struct {
	Id        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Role      Role      `db:"role" json:"role"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Property is a building or unit group owned by a landlord
type Property struct {
	Id         string    `db:"id" json:"id"`
	LandlordId string    `db:"landlord_id" json:"landlord_id"`
	Name       string    `db:"name" json:"name"`
	Address    string    `db:"address" json:"address"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Tenancy binds a tenant and a landlord to a property unit with rent terms
type Tenancy struct {
	Id         string          `db:"id" json:"id"`
	PropertyId string          `db:"property_id" json:"property_id"`
	LandlordId string          `db:"landlord_id" json:"landlord_id"`
	TenantId   string          `db:"tenant_id" json:"tenant_id"`
	Unit       string          `db:"unit" json:"unit"`
	RentAmount decimal.Decimal `db:"rent_amount" json:"rent_amount"`
	Currency   string          `db:"currency" json:"currency"`
	Status     TenancyStatus   `db:"status" json:"status"`
	StartDate  time.Time       `db:"start_date" json:"start_date"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Wallet is the per-user stored value balance (hot data)
type Wallet struct {
	Id                 string          `db:"id" json:"id"`
	UserId             string          `db:"user_id" json:"user_id"`
	Balance            decimal.Decimal `db:"balance" json:"balance"`
	Currency           string          `db:"currency" json:"currency"`
	ExternalCustomerId string          `db:"external_customer_id" json:"external_customer_id,omitempty"`
	AutoPayout         bool            `db:"auto_payout" json:"auto_payout"`
	InstantPayout      bool            `db:"instant_payout" json:"instant_payout"`
	Version            int64           `db:"version" json:"-"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// WalletTransaction is the append-only record of a balance change.
// Credits carry a positive amount, debits a negative one.
type WalletTransaction struct {
	Id                string            `db:"id" json:"id"`
	WalletId          string            `db:"wallet_id" json:"wallet_id"`
	UserId            string            `db:"user_id" json:"user_id"`
	Type              TransactionType   `db:"type" json:"type"`
	Amount            decimal.Decimal   `db:"amount" json:"amount"`
	Currency          string            `db:"currency" json:"currency"`
	Status            TransactionStatus `db:"status" json:"status"`
	Description       string            `db:"description" json:"description"`
	RelatedUserId     string            `db:"related_user_id" json:"related_user_id,omitempty"`
	TenancyId         string            `db:"tenancy_id" json:"tenancy_id,omitempty"`
	ExternalReference string            `db:"external_reference" json:"external_reference,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// BankAccount is a payout destination owned by one user
type BankAccount struct {
	Id                string    `db:"id" json:"id"`
	UserId            string    `db:"user_id" json:"user_id"`
	BankName          string    `db:"bank_name" json:"bank_name"`
	AccountHolderName string    `db:"account_holder_name" json:"account_holder_name"`
	Iban              string    `db:"iban" json:"iban"`
	IsDefault         bool      `db:"is_default" json:"is_default"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// SecurityDeposit is a hold against a tenant's funds for one tenancy
type SecurityDeposit struct {
	Id              string              `db:"id" json:"id"`
	TenancyId       string              `db:"tenancy_id" json:"tenancy_id"`
	TenantId        string              `db:"tenant_id" json:"tenant_id"`
	LandlordId      string              `db:"landlord_id" json:"landlord_id"`
	Amount          decimal.Decimal     `db:"amount" json:"amount"`
	Currency        string              `db:"currency" json:"currency"`
	Status          DepositStatus       `db:"status" json:"status"`
	LockedAt        time.Time           `db:"locked_at" json:"locked_at"`
	ReleasedAt      *time.Time          `db:"released_at" json:"released_at,omitempty"`
	ReleaseAmount   decimal.NullDecimal `db:"release_amount" json:"release_amount"`
	DeductionReason string              `db:"deduction_reason" json:"deduction_reason,omitempty"`
}

// MoneyRequest is a tenant reimbursement request awaiting landlord decision
type MoneyRequest struct {
	Id           string             `db:"id" json:"id"`
	TenancyId    string             `db:"tenancy_id" json:"tenancy_id"`
	TenantId     string             `db:"tenant_id" json:"tenant_id"`
	LandlordId   string             `db:"landlord_id" json:"landlord_id"`
	Amount       decimal.Decimal    `db:"amount" json:"amount"`
	Currency     string             `db:"currency" json:"currency"`
	Reason       string             `db:"reason" json:"reason"`
	Category     RequestCategory    `db:"category" json:"category"`
	Status       MoneyRequestStatus `db:"status" json:"status"`
	LandlordNote string             `db:"landlord_note" json:"landlord_note,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	DecidedAt    *time.Time         `db:"decided_at" json:"decided_at,omitempty"`
}

// Invitation is a single-use token gating a tenant's first registration
type Invitation struct {
	Id         string          `db:"id" json:"id"`
	Token      string          `db:"token" json:"token"`
	LandlordId string          `db:"landlord_id" json:"landlord_id"`
	Email      string          `db:"email" json:"email"`
	FullName   string          `db:"full_name" json:"full_name,omitempty"`
	Phone      string          `db:"phone" json:"phone,omitempty"`
	PropertyId string          `db:"property_id" json:"property_id,omitempty"`
	Unit       string          `db:"unit" json:"unit,omitempty"`
	RentAmount decimal.Decimal `db:"rent_amount" json:"rent_amount"`
	Currency   string          `db:"currency" json:"currency"`
	ExpiresAt  time.Time       `db:"expires_at" json:"expires_at"`
	Used       bool            `db:"used" json:"used"`
	UsedBy     string          `db:"used_by" json:"used_by,omitempty"`
	UsedAt     *time.Time      `db:"used_at" json:"used_at,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
