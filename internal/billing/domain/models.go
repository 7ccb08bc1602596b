// Package domain defines the billing subject area: invoices raised
// against a policy, payments that settle them, direct debit mandates
// and run results, arrears, refunds and premium discounts.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the settlement state of an invoice.
type InvoiceStatus string

const (
	InvoiceIssued        InvoiceStatus = "Issued"
	InvoicePaid          InvoiceStatus = "Paid"
	InvoicePartiallyPaid InvoiceStatus = "PartiallyPaid"
	InvoiceOverdue       InvoiceStatus = "Overdue"
	InvoiceCancelled     InvoiceStatus = "Cancelled"
)

// PaymentMethod is how a payment was tendered.
type PaymentMethod string

const (
	MethodDirectDebit PaymentMethod = "DirectDebit"
	MethodBPay        PaymentMethod = "BPay"
	MethodCard        PaymentMethod = "Card"
	MethodEFT         PaymentMethod = "EFT"
	MethodCash        PaymentMethod = "Cash"
	MethodCheque      PaymentMethod = "Cheque"
)

// PaymentStatus is the clearing state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentReversed  PaymentStatus = "Reversed"
)

// MandateStatus is the state of a direct debit authority.
type MandateStatus string

const (
	MandateActive    MandateStatus = "Active"
	MandateCancelled MandateStatus = "Cancelled"
	MandateSuspended MandateStatus = "Suspended"
)

// DebitResultStatus is the outcome of one debit attempt.
type DebitResultStatus string

const (
	DebitSuccess           DebitResultStatus = "Success"
	DebitDishonoured       DebitResultStatus = "Dishonoured"
	DebitInsufficientFunds DebitResultStatus = "InsufficientFunds"
)

// ArrearsStatus tracks an overdue balance record.
type ArrearsStatus string

const (
	ArrearsCurrent    ArrearsStatus = "Current"
	ArrearsResolved   ArrearsStatus = "Resolved"
	ArrearsWrittenOff ArrearsStatus = "WrittenOff"
)

// RefundStatus is the processing state of a refund.
type RefundStatus string

const (
	RefundPending   RefundStatus = "Pending"
	RefundProcessed RefundStatus = "Processed"
	RefundFailed    RefundStatus = "Failed"
)

// RefundType classifies why money is returned.
type RefundType string

const (
	RefundCancellation RefundType = "Cancellation"
	RefundOverpayment  RefundType = "Overpayment"
	RefundAdjustment   RefundType = "Adjustment"
)

// DiscountType classifies a premium discount.
type DiscountType string

const (
	DiscountAgeBased    DiscountType = "AgeBased"
	DiscountCorporate   DiscountType = "Corporate"
	DiscountMultiPolicy DiscountType = "MultiPolicy"
	DiscountLoyalty     DiscountType = "Loyalty"
)

// BankAccount is a member's account held for premium debits or claim
// refunds. The account number is stored masked.
type BankAccount struct {
	ID                  uuid.UUID  `gorm:"primaryKey;type:uuid;column:bank_account_id"`
	MemberID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	PolicyID            *uuid.UUID `gorm:"type:uuid;index"`
	AccountName         string     `gorm:"type:varchar(100);not null"`
	BSB                 string     `gorm:"type:varchar(7);not null"`
	AccountNumberMasked string     `gorm:"type:varchar(20);not null"`
	BankName            *string    `gorm:"type:varchar(100)"`
	AccountType         string     `gorm:"type:varchar(20);not null"`
	Purpose             string     `gorm:"type:varchar(30);not null"`
	IsActive            bool       `gorm:"not null;default:true"`
	IsVerified          bool       `gorm:"not null;default:false"`
	VerificationDate    *time.Time `gorm:"type:date"`
	CreatedAt           time.Time  `gorm:"not null"`
	CreatedBy           string     `gorm:"type:varchar(50);not null"`
}

func (BankAccount) TableName() string { return "bank_accounts" }

// Invoice is a premium bill for one policy billing period. BalanceDue
// is always TotalAmount minus PaidAmount.
type Invoice struct {
	ID               uuid.UUID       `gorm:"primaryKey;type:uuid;column:invoice_id"`
	InvoiceNumber    string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	PolicyID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceDate      time.Time       `gorm:"type:date;not null"`
	DueDate          time.Time       `gorm:"type:date;not null"`
	PeriodStart      time.Time       `gorm:"type:date;not null"`
	PeriodEnd        time.Time       `gorm:"type:date;not null"`
	InvoiceStatus    InvoiceStatus   `gorm:"type:varchar(20);not null;default:'Issued'"`
	GrossPremium     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	LHCLoadingAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	AgeDiscountAmt   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0;column:age_discount_amount"`
	RebateAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	OtherAdjustments decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	NetAmount        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	GSTAmount        decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PaidAmount       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	BalanceDue       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	CreatedBy        string          `gorm:"type:varchar(50);not null"`
	ModifiedAt       *time.Time
	ModifiedBy       *string `gorm:"type:varchar(50)"`
}

func (Invoice) TableName() string { return "invoices" }

// Payment settles part or all of an invoice.
type Payment struct {
	ID            uuid.UUID       `gorm:"primaryKey;type:uuid;column:payment_id"`
	PaymentNumber string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	PolicyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentDate   time.Time       `gorm:"type:date;not null"`
	PaymentAmount decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'Pending'"`
	BankReference *string         `gorm:"type:varchar(50)"`
	CreatedAt     time.Time       `gorm:"not null"`
	CreatedBy     string          `gorm:"type:varchar(50);not null"`
	ModifiedAt    *time.Time
	ModifiedBy    *string `gorm:"type:varchar(50)"`
}

func (Payment) TableName() string { return "payments" }

// DirectDebitMandate is a standing authority to debit a bank account
// on a fixed day of the month.
type DirectDebitMandate struct {
	ID                  uuid.UUID        `gorm:"primaryKey;type:uuid;column:direct_debit_id"`
	PolicyID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	BankAccountID       uuid.UUID        `gorm:"type:uuid;not null"`
	DebitDay            int              `gorm:"not null"`
	Frequency           string           `gorm:"type:varchar(20);not null;default:'Monthly'"`
	MaxDebitAmount      *decimal.Decimal `gorm:"type:numeric(10,2)"`
	MandateReference    string           `gorm:"type:varchar(50);uniqueIndex;not null"`
	AuthorizationDate   time.Time        `gorm:"type:date;not null"`
	AuthorizationMethod string           `gorm:"type:varchar(30);not null"`
	Status              MandateStatus    `gorm:"type:varchar(20);not null;default:'Active'"`
	CancellationDate    *time.Time       `gorm:"type:date"`
	CancellationReason  *string          `gorm:"type:text"`
	CreatedAt           time.Time        `gorm:"not null"`
	CreatedBy           string           `gorm:"type:varchar(50);not null"`
}

func (DirectDebitMandate) TableName() string { return "direct_debit_mandates" }

// DirectDebitResult is the outcome of one debit attempt under a
// mandate. A Success result links to exactly one payment.
type DirectDebitResult struct {
	ID                uuid.UUID         `gorm:"primaryKey;type:uuid;column:result_id"`
	DirectDebitID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	InvoiceID         *uuid.UUID        `gorm:"type:uuid;index"`
	AttemptDate       time.Time         `gorm:"type:date;not null"`
	AttemptNumber     int               `gorm:"not null;default:1"`
	RequestedAmount   decimal.Decimal   `gorm:"type:numeric(10,2);not null"`
	ResultStatus      DebitResultStatus `gorm:"type:varchar(20);not null"`
	ResultCode        *string           `gorm:"type:varchar(10)"`
	ResultDescription *string           `gorm:"type:varchar(200)"`
	SettlementDate    *time.Time        `gorm:"type:date"`
	PaymentID         *uuid.UUID        `gorm:"type:uuid;uniqueIndex"`
	RetryScheduled    bool              `gorm:"not null;default:false"`
	RetryDate         *time.Time        `gorm:"type:date"`
	CreatedAt         time.Time         `gorm:"not null"`
	CreatedBy         string            `gorm:"type:varchar(50);not null"`
}

func (DirectDebitResult) TableName() string { return "direct_debit_results" }

// Arrears records an invoice balance left unpaid past its due date.
type Arrears struct {
	ID               uuid.UUID       `gorm:"primaryKey;type:uuid;column:arrears_id"`
	PolicyID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ArrearsDate      time.Time       `gorm:"type:date;not null"`
	ArrearsAmount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DaysOverdue      int             `gorm:"not null"`
	ArrearsStatus    ArrearsStatus   `gorm:"type:varchar(20);not null"`
	ResolutionDate   *time.Time      `gorm:"type:date"`
	ResolutionMethod *string         `gorm:"type:text"`
	ReminderSent     bool            `gorm:"not null;default:false"`
	ReminderDate     *time.Time      `gorm:"type:date"`
	CreatedAt        time.Time       `gorm:"not null"`
	CreatedBy        string          `gorm:"type:varchar(50);not null"`
}

func (Arrears) TableName() string { return "arrears" }

// Refund returns money to a member or policyholder.
type Refund struct {
	ID              uuid.UUID       `gorm:"primaryKey;type:uuid;column:refund_id"`
	RefundReference string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	PolicyID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberID        *uuid.UUID      `gorm:"type:uuid"`
	RefundDate      time.Time       `gorm:"type:date;not null"`
	RefundAmount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	RefundReason    string          `gorm:"type:varchar(200);not null"`
	RefundType      RefundType      `gorm:"type:varchar(30);not null"`
	PaymentMethod   string          `gorm:"type:varchar(30);not null"`
	BankAccountID   *uuid.UUID      `gorm:"type:uuid"`
	Status          RefundStatus    `gorm:"type:varchar(20);not null;default:'Pending'"`
	ProcessedDate   *time.Time      `gorm:"type:date"`
	BankReference   *string         `gorm:"type:varchar(50)"`
	ApprovedBy      *string         `gorm:"type:varchar(50)"`
	CreatedAt       time.Time       `gorm:"not null"`
	CreatedBy       string          `gorm:"type:varchar(50);not null"`
}

func (Refund) TableName() string { return "refunds" }

// PremiumDiscount is a standing discount applied to a policy's
// premium, distinct from the regulatory age-based discount record.
type PremiumDiscount struct {
	ID                 uuid.UUID        `gorm:"primaryKey;type:uuid;column:premium_discount_id"`
	PolicyID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	DiscountType       DiscountType     `gorm:"type:varchar(30);not null"`
	DiscountPercentage decimal.Decimal  `gorm:"type:numeric(5,2);not null"`
	DiscountAmount     *decimal.Decimal `gorm:"type:numeric(10,2)"`
	EffectiveDate      time.Time        `gorm:"type:date;not null"`
	EndDate            *time.Time       `gorm:"type:date"`
	Reason             *string          `gorm:"type:varchar(200)"`
	CorporateAccountID *int
	IsActive           bool      `gorm:"not null;default:true"`
	CreatedAt          time.Time `gorm:"not null"`
	CreatedBy          string    `gorm:"type:varchar(50);not null"`
}

func (PremiumDiscount) TableName() string { return "premium_discounts" }
