package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes where a journal line originated.
type TransactionType string

const (
	TypeJournal  TransactionType = "journal"
	TypeSales    TransactionType = "sales"
	TypePurchase TransactionType = "purchase"
	TypeReceipt  TransactionType = "receipt"
	TypePayment  TransactionType = "payment"
)

// Prefix returns the two-letter prefix used in transaction numbers.
func (t TransactionType) Prefix() string {
	switch t {
	case TypeSales:
		return "SA"
	case TypePurchase:
		return "PU"
	case TypeReceipt:
		return "RC"
	case TypePayment:
		return "PM"
	default:
		return "JE"
	}
}

// TransactionStatus is the lifecycle state of a journal line.
type TransactionStatus string

const (
	StatusDraft     TransactionStatus = "draft"
	StatusPending   TransactionStatus = "pending"
	StatusApproved  TransactionStatus = "approved"
	StatusPosted    TransactionStatus = "posted"
	StatusCancelled TransactionStatus = "cancelled"
)

// Terminal reports whether no further transition leaves this status.
func (s TransactionStatus) Terminal() bool {
	return s == StatusPosted || s == StatusCancelled
}

// Transaction is a single journal line: one side of a double entry against
// exactly one leaf account. Lines created together share a number prefix and
// must balance as a group.
type Transaction struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	Number      string // "<prefix><yyyyMMdd>-<seq>", unique
	Date        time.Time
	Type        TransactionType
	Status      TransactionStatus
	AccountID   uuid.UUID
	Description string

	// Exactly one of Debit/Credit is positive, the other exactly zero.
	Debit  decimal.Decimal
	Credit decimal.Decimal

	// Derived from Date at creation; see FiscalPeriodOf.
	FiscalYear    int
	FiscalMonth   int
	FiscalQuarter int

	// OriginalID links a reversing entry back to the posted line it corrects.
	OriginalID uuid.UUID

	CreatedAt    time.Time
	ApprovedBy   string
	ApprovedAt   time.Time
	PostedAt     time.Time
	CancelledBy  string
	CancelReason string
	CancelledAt  time.Time
}

// IsDebit reports which side of the entry this line carries.
func (t Transaction) IsDebit() bool {
	return t.Debit.IsPositive()
}

// Amount returns the positive amount of whichever side is set.
func (t Transaction) Amount() decimal.Decimal {
	if t.IsDebit() {
		return t.Debit
	}
	return t.Credit
}
