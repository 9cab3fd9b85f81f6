package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidState           = errors.New("invalid state")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrCurrencyMismatch       = fmt.Errorf("%w: currency mismatch", ErrInvalidState)
)

// CreateProfileParams contains the parameters for registering a profile.
type CreateProfileParams struct {
	Id       string
	Email    string
	FullName string
	Phone    string
	Role     models.Role
	Currency string
}

// CreatePropertyParams contains the parameters for registering a property.
type CreatePropertyParams struct {
	LandlordId string
	Name       string
	Address    string
}

// CreateTenancyParams binds a tenant to a landlord's property.
type CreateTenancyParams struct {
	PropertyId string
	LandlordId string
	TenantId   string
	Unit       string
	RentAmount decimal.Decimal
	Currency   string
	Status     models.TenancyStatus
	StartDate  time.Time
}

// WithdrawParams describes a debit towards one of the caller's bank accounts.
type WithdrawParams struct {
	UserId        string
	BankAccountId string
	Amount        decimal.Decimal
}

// CreditDepositParams describes a gateway-confirmed top-up.
// ExternalReference identifies the checkout session and deduplicates redelivery.
type CreditDepositParams struct {
	WalletId          string
	UserId            string
	Amount            decimal.Decimal
	Currency          string
	ExternalReference string
}

// StartPayoutParams describes a pending debit sent to the gateway for transfer.
type StartPayoutParams struct {
	UserId        string
	BankAccountId string
	Amount        decimal.Decimal
	Reference     string
}

// LockDepositParams describes a landlord placing a hold on tenant funds.
type LockDepositParams struct {
	LandlordId string
	TenancyId  string
	Amount     decimal.Decimal
}

// ReleaseDepositParams describes a full or partial release. A nil
// ReleaseAmount releases the whole deposit.
type ReleaseDepositParams struct {
	LandlordId      string
	DepositId       string
	ReleaseAmount   *decimal.Decimal
	DeductionReason string
}

// ReleaseResult is the outcome of a security deposit release.
// Either transaction may be nil when its amount is zero.
type ReleaseResult struct {
	Deposit   *models.SecurityDeposit
	Refund    *models.WalletTransaction
	Deduction *models.WalletTransaction
}

// CreateMoneyRequestParams describes a tenant reimbursement request.
type CreateMoneyRequestParams struct {
	TenantId  string
	TenancyId string
	Amount    decimal.Decimal
	Reason    string
	Category  models.RequestCategory
}

// DecideMoneyRequestParams identifies a pending request and the landlord deciding it.
type DecideMoneyRequestParams struct {
	LandlordId string
	RequestId  string
	Note       string
}

// TransferResult holds both legs of a wallet-to-wallet movement.
type TransferResult struct {
	Debit  *models.WalletTransaction
	Credit *models.WalletTransaction
}

// MoneyRequestPayment is the outcome of an approved money request.
type MoneyRequestPayment struct {
	Request *models.MoneyRequest
	TransferResult
}

// PartyFilter scopes a listing to a tenant or a landlord. Exactly one field is set.
type PartyFilter struct {
	TenantId   string
	LandlordId string
}

// AddBankAccountParams describes a new payout destination.
type AddBankAccountParams struct {
	UserId            string
	BankName          string
	AccountHolderName string
	Iban              string
	IsDefault         bool
}

// CreateInvitationParams describes a new single-use onboarding token.
type CreateInvitationParams struct {
	Token      string
	LandlordId string
	Email      string
	FullName   string
	Phone      string
	PropertyId string
	Unit       string
	RentAmount decimal.Decimal
	Currency   string
	ExpiresAt  time.Time
}

// ConsumeInvitationParams redeems a token for a registered user.
type ConsumeInvitationParams struct {
	Token  string
	UserId string
	UsedAt time.Time
}

// Reconciliation compares a wallet balance with its transaction history.
type Reconciliation struct {
	WalletId   string
	Balance    decimal.Decimal
	Calculated decimal.Decimal
}

// Matches reports whether the stored balance equals the history sum.
func (r Reconciliation) Matches() bool {
	return r.Balance.Equal(r.Calculated)
}

// WalletStore defines the contract that every persistent backend must satisfy.
// Each money movement is all-or-nothing: balance changes and their transaction
// records are committed together or not at all.
type WalletStore interface {
	// --- Profiles, properties, tenancies ---
	CreateProfile(ctx context.Context, params CreateProfileParams) (*models.Profile, error)
	GetProfile(ctx context.Context, userId string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProperty(ctx context.Context, params CreatePropertyParams) (*models.Property, error)
	GetProperty(ctx context.Context, propertyId string) (*models.Property, error)
	CreateTenancy(ctx context.Context, params CreateTenancyParams) (*models.Tenancy, error)
	GetTenancy(ctx context.Context, tenancyId string) (*models.Tenancy, error)
	ListTenancies(ctx context.Context, filter PartyFilter) ([]models.Tenancy, error)

	// --- Wallets ---
	GetOrCreateWallet(ctx context.Context, userId, currency string) (*models.Wallet, error)
	GetWalletByUserId(ctx context.Context, userId string) (*models.Wallet, error)
	GetWalletById(ctx context.Context, walletId string) (*models.Wallet, error)
	ListWallets(ctx context.Context) ([]models.Wallet, error)
	SetExternalCustomerId(ctx context.Context, walletId, customerId string) error
	UpdateWalletSettings(ctx context.Context, userId string, autoPayout, instantPayout *bool) (*models.Wallet, error)

	// --- Transactions ---
	ListTransactions(ctx context.Context, walletId string, limit, offset int) ([]models.WalletTransaction, error)
	CountTransactions(ctx context.Context, walletId string) (int, error)
	ReconcileWallet(ctx context.Context, walletId string) (*Reconciliation, error)

	// --- Money movements ---
	Withdraw(ctx context.Context, params WithdrawParams) (*models.WalletTransaction, error)
	CreditDeposit(ctx context.Context, params CreditDepositParams) (*models.WalletTransaction, error)
	StartPayout(ctx context.Context, params StartPayoutParams) (*models.WalletTransaction, error)
	SettlePayout(ctx context.Context, transactionId string, succeeded bool, externalReference string) (*models.WalletTransaction, error)
	PayRent(ctx context.Context, tenantId, tenancyId string) (*TransferResult, error)

	// --- Security deposits ---
	LockSecurityDeposit(ctx context.Context, params LockDepositParams) (*models.SecurityDeposit, *models.WalletTransaction, error)
	ReleaseSecurityDeposit(ctx context.Context, params ReleaseDepositParams) (*ReleaseResult, error)
	GetSecurityDeposit(ctx context.Context, depositId, landlordId string) (*models.SecurityDeposit, error)
	ListSecurityDeposits(ctx context.Context, filter PartyFilter) ([]models.SecurityDeposit, error)

	// --- Money requests ---
	CreateMoneyRequest(ctx context.Context, params CreateMoneyRequestParams) (*models.MoneyRequest, error)
	RejectMoneyRequest(ctx context.Context, params DecideMoneyRequestParams) (*models.MoneyRequest, error)
	PayMoneyRequest(ctx context.Context, params DecideMoneyRequestParams) (*MoneyRequestPayment, error)
	ListMoneyRequests(ctx context.Context, filter PartyFilter) ([]models.MoneyRequest, error)

	// --- Bank accounts ---
	AddBankAccount(ctx context.Context, params AddBankAccountParams) (*models.BankAccount, error)
	ListBankAccounts(ctx context.Context, userId string) ([]models.BankAccount, error)
	GetDefaultBankAccount(ctx context.Context, userId string) (*models.BankAccount, error)
	DeleteBankAccount(ctx context.Context, userId, accountId string) error

	// --- Invitations ---
	CreateInvitation(ctx context.Context, params CreateInvitationParams) (*models.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error)
	ConsumeInvitation(ctx context.Context, params ConsumeInvitationParams) (*models.Invitation, *models.Tenancy, error)

	// --- Lifecycle ---
	Close()
}
