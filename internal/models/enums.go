package models

// TenancyStatus is the lifecycle state of a tenancy
type TenancyStatus string

const (
	TenancyPending TenancyStatus = "pending"
	TenancyActive  TenancyStatus = "active"
	TenancyEnded   TenancyStatus = "ended"
)

// TransactionType classifies a wallet balance change
type TransactionType string

const (
	TxDeposit                TransactionType = "deposit"
	TxWithdrawal             TransactionType = "withdrawal"
	TxPayout                 TransactionType = "payout"
	TxRentReceived           TransactionType = "rent_received"
	TxRentPaid               TransactionType = "rent_paid"
	TxSecurityDepositLock    TransactionType = "security_deposit_lock"
	TxSecurityDepositRelease TransactionType = "security_deposit_release"
	TxMaintenanceRequest     TransactionType = "maintenance_request"
)

// TransactionStatus is the settlement state of a wallet transaction.
// Only the status of a transaction is ever updated after insert.
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusFailed    TransactionStatus = "failed"
	TxStatusCancelled TransactionStatus = "cancelled"
)

// DepositStatus is the state of a security deposit hold
type DepositStatus string

const (
	DepositHeld              DepositStatus = "held"
	DepositReleased          DepositStatus = "released"
	DepositPartiallyReleased DepositStatus = "partially_released"
)

// IsTerminal reports whether no further release is possible
func (s DepositStatus) IsTerminal() bool {
	return s == DepositReleased || s == DepositPartiallyReleased
}

// MoneyRequestStatus follows pending -> paid | rejected
type MoneyRequestStatus string

const (
	RequestPending  MoneyRequestStatus = "pending"
	RequestPaid     MoneyRequestStatus = "paid"
	RequestRejected MoneyRequestStatus = "rejected"
)

// RequestCategory classifies a money request
type RequestCategory string

const (
	CategoryMaintenance RequestCategory = "maintenance"
	CategoryRepair      RequestCategory = "repair"
	CategoryUtility     RequestCategory = "utility"
	CategoryOther       RequestCategory = "other"
)

// Valid reports whether c is one of the known categories
func (c RequestCategory) Valid() bool {
	switch c {
	case CategoryMaintenance, CategoryRepair, CategoryUtility, CategoryOther:
		return true
	}
	return false
}

// Decision is the landlord's verdict on a money request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)
