package service

import (
	"context"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
	billdomain "github.com/brickwell/healthcore/internal/billing/domain"
	"github.com/brickwell/healthcore/internal/clock"
	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/brickwell/healthcore/internal/export"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	Store *store.Store
	Alloc *allocator.Allocator
	Clock clock.Clock
	Log   *zap.Logger
}

// Service owns invoicing, payment application, direct debit runs,
// arrears and refunds.
type Service struct {
	store *store.Store
	alloc *allocator.Allocator
	clock clock.Clock
	log   *zap.Logger
}

func NewService(p Params) *Service {
	return &Service{
		store: p.Store,
		alloc: p.Alloc,
		clock: p.Clock,
		log:   p.Log.Named("billing.service"),
	}
}

// RegisterBankAccountInput adds a member bank account.
type RegisterBankAccountInput struct {
	MemberID            uuid.UUID
	PolicyID            *uuid.UUID
	AccountName         string
	BSB                 string
	AccountNumberMasked string
	BankName            *string
	AccountType         string
	Purpose             string
	CreatedBy           string
}

func (s *Service) RegisterBankAccount(ctx context.Context, in RegisterBankAccountInput) (*billdomain.BankAccount, error) {
	if in.AccountName == "" {
		return nil, domainerr.Validation("bank_account", "account_name", "required")
	}
	if len(in.BSB) != 7 {
		return nil, domainerr.Validation("bank_account", "bsb", "expected NNN-NNN, got %q", in.BSB)
	}
	if in.AccountNumberMasked == "" {
		return nil, domainerr.Validation("bank_account", "account_number_masked", "required")
	}
	switch in.AccountType {
	case "Savings", "Cheque":
	default:
		return nil, domainerr.Validation("bank_account", "account_type", "unknown type %q", in.AccountType)
	}
	switch in.Purpose {
	case "PremiumDebit", "ClaimRefund", "Both":
	default:
		return nil, domainerr.Validation("bank_account", "purpose", "unknown purpose %q", in.Purpose)
	}

	row := &billdomain.BankAccount{
		ID:                  s.alloc.NewID(),
		MemberID:            in.MemberID,
		PolicyID:            in.PolicyID,
		AccountName:         in.AccountName,
		BSB:                 in.BSB,
		AccountNumberMasked: in.AccountNumberMasked,
		BankName:            in.BankName,
		AccountType:         in.AccountType,
		Purpose:             in.Purpose,
		IsActive:            true,
		CreatedAt:           s.clock.Now().UTC(),
		CreatedBy:           in.CreatedBy,
	}

	err := s.store.RunUnit(ctx, "billing.bank_account", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedBankAccount(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// IssueInvoiceInput bills a policy for one period. Net, total and
// balance are derived here, not accepted from the caller.
type IssueInvoiceInput struct {
	PolicyID         uuid.UUID
	InvoiceDate      time.Time
	DueDate          time.Time
	PeriodStart      time.Time
	PeriodEnd        time.Time
	GrossPremium     decimal.Decimal
	LHCLoadingAmount decimal.Decimal
	AgeDiscountAmt   decimal.Decimal
	RebateAmount     decimal.Decimal
	OtherAdjustments decimal.Decimal
	GSTAmount        decimal.Decimal
	CreatedBy        string
}

func (s *Service) IssueInvoice(ctx context.Context, in IssueInvoiceInput) (*billdomain.Invoice, error) {
	if in.GrossPremium.IsNegative() {
		return nil, domainerr.Validation("invoice", "gross_premium", "cannot be negative")
	}
	if in.InvoiceDate.IsZero() || in.DueDate.IsZero() {
		return nil, domainerr.Validation("invoice", "dates", "invoice and due dates are required")
	}
	if in.DueDate.Before(in.InvoiceDate) {
		return nil, domainerr.Validation("invoice", "due_date", "precedes invoice date")
	}
	if in.PeriodEnd.Before(in.PeriodStart) {
		return nil, domainerr.Validation("invoice", "period_end", "precedes period start")
	}

	net := in.GrossPremium.
		Add(in.LHCLoadingAmount).
		Sub(in.AgeDiscountAmt).
		Sub(in.RebateAmount).
		Add(in.OtherAdjustments)
	if net.IsNegative() {
		return nil, domainerr.Validation("invoice", "net_amount", "adjustments exceed gross premium")
	}
	total := net.Add(in.GSTAmount)

	id, number, err := s.alloc.Allocate(allocator.KindInvoice)
	if err != nil {
		return nil, err
	}

	row := &billdomain.Invoice{
		ID:               id,
		InvoiceNumber:    number,
		PolicyID:         in.PolicyID,
		InvoiceDate:      in.InvoiceDate,
		DueDate:          in.DueDate,
		PeriodStart:      in.PeriodStart,
		PeriodEnd:        in.PeriodEnd,
		InvoiceStatus:    billdomain.InvoiceIssued,
		GrossPremium:     in.GrossPremium,
		LHCLoadingAmount: in.LHCLoadingAmount,
		AgeDiscountAmt:   in.AgeDiscountAmt,
		RebateAmount:     in.RebateAmount,
		OtherAdjustments: in.OtherAdjustments,
		NetAmount:        net,
		GSTAmount:        in.GSTAmount,
		TotalAmount:      total,
		PaidAmount:       decimal.Zero,
		BalanceDue:       total,
		CreatedAt:        s.clock.Now().UTC(),
		CreatedBy:        in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "billing.invoice_issue", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedInvoice(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ApplyPaymentInput settles part or all of an invoice.
type ApplyPaymentInput struct {
	InvoiceID     uuid.UUID
	PaymentDate   time.Time
	Amount        decimal.Decimal
	Method        billdomain.PaymentMethod
	BankReference *string
	CreatedBy     string
}

// ApplyPayment records a completed payment against an invoice and
// moves the invoice between Issued, PartiallyPaid and Paid.
func (s *Service) ApplyPayment(ctx context.Context, in ApplyPaymentInput) (*billdomain.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, domainerr.Validation("payment", "payment_amount", "must be positive")
	}
	switch in.Method {
	case billdomain.MethodDirectDebit, billdomain.MethodBPay, billdomain.MethodCard,
		billdomain.MethodEFT, billdomain.MethodCash, billdomain.MethodCheque:
	default:
		return nil, domainerr.Validation("payment", "payment_method", "unknown method %q", in.Method)
	}

	var created billdomain.Payment
	err := s.store.RunUnit(ctx, "billing.payment_apply", func(u *store.UnitOfWork) error {
		payment, err := s.settleInvoice(u, in.InvoiceID, in.PaymentDate, in.Amount, in.Method, in.BankReference, in.CreatedBy)
		if err != nil {
			return err
		}
		created = *payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// settleInvoice creates a completed payment and rolls it into the
// invoice totals within the caller's unit.
func (s *Service) settleInvoice(u *store.UnitOfWork, invoiceID uuid.UUID, paymentDate time.Time, amount decimal.Decimal, method billdomain.PaymentMethod, bankRef *string, createdBy string) (*billdomain.Payment, error) {
	var inv billdomain.Invoice
	if err := u.Tx().First(&inv, "invoice_id = ?", invoiceID).Error; err != nil {
		return nil, &domainerr.ReferenceMissError{Kind: "invoice", ID: invoiceID.String()}
	}
	switch inv.InvoiceStatus {
	case billdomain.InvoicePaid:
		return nil, domainerr.Validation("invoice", "invoice_status", "invoice already settled")
	case billdomain.InvoiceCancelled:
		return nil, domainerr.Validation("invoice", "invoice_status", "invoice is cancelled")
	}
	if amount.GreaterThan(inv.BalanceDue) {
		return nil, domainerr.Validation("payment", "payment_amount", "%s exceeds balance due %s", amount, inv.BalanceDue)
	}

	id, number, err := s.alloc.Allocate(allocator.KindPayment)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	payment := &billdomain.Payment{
		ID:            id,
		PaymentNumber: number,
		PolicyID:      inv.PolicyID,
		InvoiceID:     &inv.ID,
		PaymentDate:   paymentDate,
		PaymentAmount: amount,
		PaymentMethod: method,
		PaymentStatus: billdomain.PaymentCompleted,
		BankReference: bankRef,
		CreatedAt:     now,
		CreatedBy:     createdBy,
	}
	if err := u.Create(payment.TableName(), payment.ID.String(), payment, exportedPayment(payment)); err != nil {
		return nil, err
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)
	if inv.BalanceDue.IsPositive() {
		inv.InvoiceStatus = billdomain.InvoicePartiallyPaid
	} else {
		inv.InvoiceStatus = billdomain.InvoicePaid
	}
	inv.ModifiedAt = &now
	inv.ModifiedBy = &createdBy
	if err := u.Update(inv.TableName(), inv.ID.String(), &inv, exportedInvoice(&inv)); err != nil {
		return nil, err
	}
	return payment, nil
}

// CreateMandateInput authorizes recurring debits from a bank account.
type CreateMandateInput struct {
	PolicyID            uuid.UUID
	BankAccountID       uuid.UUID
	DebitDay            int
	Frequency           string
	MaxDebitAmount      *decimal.Decimal
	AuthorizationDate   time.Time
	AuthorizationMethod string
	CreatedBy           string
}

func (s *Service) CreateMandate(ctx context.Context, in CreateMandateInput) (*billdomain.DirectDebitMandate, error) {
	if in.DebitDay < 1 || in.DebitDay > 28 {
		return nil, domainerr.Validation("direct_debit_mandate", "debit_day", "must be between 1 and 28, got %d", in.DebitDay)
	}
	if in.AuthorizationDate.IsZero() {
		return nil, domainerr.Validation("direct_debit_mandate", "authorization_date", "required")
	}
	switch in.AuthorizationMethod {
	case "Online", "Phone", "PaperForm":
	default:
		return nil, domainerr.Validation("direct_debit_mandate", "authorization_method", "unknown method %q", in.AuthorizationMethod)
	}
	frequency := in.Frequency
	if frequency == "" {
		frequency = "Monthly"
	}

	id, reference, err := s.alloc.Allocate(allocator.KindMandate)
	if err != nil {
		return nil, err
	}
	row := &billdomain.DirectDebitMandate{
		ID:                  id,
		PolicyID:            in.PolicyID,
		BankAccountID:       in.BankAccountID,
		DebitDay:            in.DebitDay,
		Frequency:           frequency,
		MaxDebitAmount:      in.MaxDebitAmount,
		MandateReference:    reference,
		AuthorizationDate:   in.AuthorizationDate,
		AuthorizationMethod: in.AuthorizationMethod,
		Status:              billdomain.MandateActive,
		CreatedAt:           s.clock.Now().UTC(),
		CreatedBy:           in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "billing.mandate_create", func(u *store.UnitOfWork) error {
		var account billdomain.BankAccount
		if err := u.Tx().First(&account, "bank_account_id = ?", in.BankAccountID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "bank_account", ID: in.BankAccountID.String()}
		}
		if !account.IsActive {
			return domainerr.Validation("direct_debit_mandate", "bank_account_id", "account is inactive")
		}
		return u.Create(row.TableName(), row.ID.String(), row, exportedMandate(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// CancelMandate ends an active mandate.
func (s *Service) CancelMandate(ctx context.Context, mandateID uuid.UUID, cancelDate time.Time, reason string) (*billdomain.DirectDebitMandate, error) {
	if cancelDate.IsZero() {
		return nil, domainerr.Validation("direct_debit_mandate", "cancellation_date", "required")
	}

	var cancelled billdomain.DirectDebitMandate
	err := s.store.RunUnit(ctx, "billing.mandate_cancel", func(u *store.UnitOfWork) error {
		var row billdomain.DirectDebitMandate
		if err := u.Tx().First(&row, "direct_debit_id = ?", mandateID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "direct_debit_mandate", ID: mandateID.String()}
		}
		if row.Status != billdomain.MandateActive {
			return domainerr.Validation("direct_debit_mandate", "status", "mandate is %s", row.Status)
		}
		row.Status = billdomain.MandateCancelled
		row.CancellationDate = &cancelDate
		row.CancellationReason = &reason
		if err := u.Update(row.TableName(), row.ID.String(), &row, exportedMandate(&row)); err != nil {
			return err
		}
		cancelled = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

// RecordDebitResultInput records one debit attempt under a mandate.
type RecordDebitResultInput struct {
	MandateID         uuid.UUID
	InvoiceID         uuid.UUID
	AttemptDate       time.Time
	AttemptNumber     int
	Status            billdomain.DebitResultStatus
	ResultCode        *string
	ResultDescription *string
	RetryScheduled    bool
	RetryDate         *time.Time
	CreatedBy         string
}

// RecordDebitResult writes the attempt outcome. A successful attempt
// creates and links exactly one payment settling the invoice in the
// same unit; failed attempts never carry a payment.
func (s *Service) RecordDebitResult(ctx context.Context, in RecordDebitResultInput) (*billdomain.DirectDebitResult, error) {
	switch in.Status {
	case billdomain.DebitSuccess, billdomain.DebitDishonoured, billdomain.DebitInsufficientFunds:
	default:
		return nil, domainerr.Validation("direct_debit_result", "result_status", "unknown status %q", in.Status)
	}
	if in.AttemptNumber < 1 {
		return nil, domainerr.Validation("direct_debit_result", "attempt_number", "must be at least 1")
	}
	if in.AttemptDate.IsZero() {
		return nil, domainerr.Validation("direct_debit_result", "attempt_date", "required")
	}
	if in.Status == billdomain.DebitSuccess && in.RetryScheduled {
		return nil, domainerr.Validation("direct_debit_result", "retry_scheduled", "successful attempt cannot schedule a retry")
	}
	if in.RetryScheduled && in.RetryDate == nil {
		return nil, domainerr.Validation("direct_debit_result", "retry_date", "required when a retry is scheduled")
	}

	var created billdomain.DirectDebitResult
	err := s.store.RunUnit(ctx, "billing.debit_result", func(u *store.UnitOfWork) error {
		var mandate billdomain.DirectDebitMandate
		if err := u.Tx().First(&mandate, "direct_debit_id = ?", in.MandateID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "direct_debit_mandate", ID: in.MandateID.String()}
		}
		if mandate.Status != billdomain.MandateActive {
			return domainerr.Validation("direct_debit_result", "direct_debit_id", "mandate is %s", mandate.Status)
		}
		var inv billdomain.Invoice
		if err := u.Tx().First(&inv, "invoice_id = ?", in.InvoiceID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "invoice", ID: in.InvoiceID.String()}
		}
		requested := inv.BalanceDue
		if mandate.MaxDebitAmount != nil && requested.GreaterThan(*mandate.MaxDebitAmount) {
			return domainerr.Validation("direct_debit_result", "requested_amount", "%s exceeds mandate maximum %s", requested, mandate.MaxDebitAmount)
		}

		row := &billdomain.DirectDebitResult{
			ID:                s.alloc.NewID(),
			DirectDebitID:     mandate.ID,
			InvoiceID:         &inv.ID,
			AttemptDate:       in.AttemptDate,
			AttemptNumber:     in.AttemptNumber,
			RequestedAmount:   requested,
			ResultStatus:      in.Status,
			ResultCode:        in.ResultCode,
			ResultDescription: in.ResultDescription,
			RetryScheduled:    in.RetryScheduled,
			RetryDate:         in.RetryDate,
			CreatedAt:         s.clock.Now().UTC(),
			CreatedBy:         in.CreatedBy,
		}
		if in.Status == billdomain.DebitSuccess {
			payment, err := s.settleInvoice(u, inv.ID, in.AttemptDate, requested, billdomain.MethodDirectDebit, &mandate.MandateReference, in.CreatedBy)
			if err != nil {
				return err
			}
			row.PaymentID = &payment.ID
			row.SettlementDate = &in.AttemptDate
		}
		if err := u.Create(row.TableName(), row.ID.String(), row, exportedDebitResult(row)); err != nil {
			return err
		}
		created = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// RaiseArrearsInput records an unpaid balance past its due date.
type RaiseArrearsInput struct {
	InvoiceID   uuid.UUID
	ArrearsDate time.Time
	CreatedBy   string
}

// RaiseArrears opens an arrears record for an invoice with a positive
// balance past its due date and marks the invoice Overdue.
func (s *Service) RaiseArrears(ctx context.Context, in RaiseArrearsInput) (*billdomain.Arrears, error) {
	if in.ArrearsDate.IsZero() {
		return nil, domainerr.Validation("arrears", "arrears_date", "required")
	}

	var created billdomain.Arrears
	err := s.store.RunUnit(ctx, "billing.arrears_raise", func(u *store.UnitOfWork) error {
		var inv billdomain.Invoice
		if err := u.Tx().First(&inv, "invoice_id = ?", in.InvoiceID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "invoice", ID: in.InvoiceID.String()}
		}
		if !inv.BalanceDue.IsPositive() {
			return domainerr.Validation("arrears", "invoice_id", "invoice has no outstanding balance")
		}
		if !in.ArrearsDate.After(inv.DueDate) {
			return domainerr.Validation("arrears", "arrears_date", "invoice is not yet past due")
		}
		daysOverdue := int(in.ArrearsDate.Sub(inv.DueDate).Hours() / 24)

		now := s.clock.Now().UTC()
		row := &billdomain.Arrears{
			ID:            s.alloc.NewID(),
			PolicyID:      inv.PolicyID,
			InvoiceID:     inv.ID,
			ArrearsDate:   in.ArrearsDate,
			ArrearsAmount: inv.BalanceDue,
			DaysOverdue:   daysOverdue,
			ArrearsStatus: billdomain.ArrearsCurrent,
			CreatedAt:     now,
			CreatedBy:     in.CreatedBy,
		}
		if err := u.Create(row.TableName(), row.ID.String(), row, exportedArrears(row)); err != nil {
			return err
		}

		if inv.InvoiceStatus == billdomain.InvoiceIssued || inv.InvoiceStatus == billdomain.InvoicePartiallyPaid {
			inv.InvoiceStatus = billdomain.InvoiceOverdue
			inv.ModifiedAt = &now
			inv.ModifiedBy = &in.CreatedBy
			if err := u.Update(inv.TableName(), inv.ID.String(), &inv, exportedInvoice(&inv)); err != nil {
				return err
			}
		}
		created = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ResolveArrears closes an open arrears record.
func (s *Service) ResolveArrears(ctx context.Context, arrearsID uuid.UUID, resolutionDate time.Time, method string) (*billdomain.Arrears, error) {
	if resolutionDate.IsZero() {
		return nil, domainerr.Validation("arrears", "resolution_date", "required")
	}

	var resolved billdomain.Arrears
	err := s.store.RunUnit(ctx, "billing.arrears_resolve", func(u *store.UnitOfWork) error {
		var row billdomain.Arrears
		if err := u.Tx().First(&row, "arrears_id = ?", arrearsID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "arrears", ID: arrearsID.String()}
		}
		if row.ArrearsStatus != billdomain.ArrearsCurrent {
			return domainerr.Validation("arrears", "arrears_status", "arrears already %s", row.ArrearsStatus)
		}
		row.ArrearsStatus = billdomain.ArrearsResolved
		row.ResolutionDate = &resolutionDate
		row.ResolutionMethod = &method
		if err := u.Update(row.TableName(), row.ID.String(), &row, exportedArrears(&row)); err != nil {
			return err
		}
		resolved = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// IssueRefundInput returns money against a policy, typically a
// prorated premium after cancellation.
type IssueRefundInput struct {
	PolicyID      uuid.UUID
	MemberID      *uuid.UUID
	RefundDate    time.Time
	Amount        decimal.Decimal
	Reason        string
	Type          billdomain.RefundType
	PaymentMethod string
	BankAccountID *uuid.UUID
	BankReference *string
	ApprovedBy    *string
	CreatedBy     string
}

func (s *Service) IssueRefund(ctx context.Context, in IssueRefundInput) (*billdomain.Refund, error) {
	if !in.Amount.IsPositive() {
		return nil, domainerr.Validation("refund", "refund_amount", "must be positive")
	}
	if in.Reason == "" {
		return nil, domainerr.Validation("refund", "refund_reason", "required")
	}
	switch in.Type {
	case billdomain.RefundCancellation, billdomain.RefundOverpayment, billdomain.RefundAdjustment:
	default:
		return nil, domainerr.Validation("refund", "refund_type", "unknown type %q", in.Type)
	}

	id, reference, err := s.alloc.Allocate(allocator.KindRefund)
	if err != nil {
		return nil, err
	}
	row := &billdomain.Refund{
		ID:              id,
		RefundReference: reference,
		PolicyID:        in.PolicyID,
		MemberID:        in.MemberID,
		RefundDate:      in.RefundDate,
		RefundAmount:    in.Amount.Round(2),
		RefundReason:    in.Reason,
		RefundType:      in.Type,
		PaymentMethod:   in.PaymentMethod,
		BankAccountID:   in.BankAccountID,
		Status:          billdomain.RefundProcessed,
		ProcessedDate:   &in.RefundDate,
		BankReference:   in.BankReference,
		ApprovedBy:      in.ApprovedBy,
		CreatedAt:       s.clock.Now().UTC(),
		CreatedBy:       in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "billing.refund_issue", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedRefund(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GrantPremiumDiscountInput applies a standing discount to a policy.
type GrantPremiumDiscountInput struct {
	PolicyID           uuid.UUID
	Type               billdomain.DiscountType
	Percentage         decimal.Decimal
	Amount             *decimal.Decimal
	EffectiveDate      time.Time
	EndDate            *time.Time
	Reason             *string
	CorporateAccountID *int
	CreatedBy          string
}

func (s *Service) GrantPremiumDiscount(ctx context.Context, in GrantPremiumDiscountInput) (*billdomain.PremiumDiscount, error) {
	switch in.Type {
	case billdomain.DiscountAgeBased, billdomain.DiscountCorporate,
		billdomain.DiscountMultiPolicy, billdomain.DiscountLoyalty:
	default:
		return nil, domainerr.Validation("premium_discount", "discount_type", "unknown type %q", in.Type)
	}
	if in.Percentage.IsNegative() || in.Percentage.GreaterThan(hundred) {
		return nil, domainerr.Validation("premium_discount", "discount_percentage", "must be between 0 and 100")
	}
	if in.EffectiveDate.IsZero() {
		return nil, domainerr.Validation("premium_discount", "effective_date", "required")
	}
	if in.EndDate != nil && in.EndDate.Before(in.EffectiveDate) {
		return nil, domainerr.Validation("premium_discount", "end_date", "precedes effective date")
	}

	row := &billdomain.PremiumDiscount{
		ID:                 s.alloc.NewID(),
		PolicyID:           in.PolicyID,
		DiscountType:       in.Type,
		DiscountPercentage: in.Percentage,
		DiscountAmount:     in.Amount,
		EffectiveDate:      in.EffectiveDate,
		EndDate:            in.EndDate,
		Reason:             in.Reason,
		CorporateAccountID: in.CorporateAccountID,
		IsActive:           true,
		CreatedAt:          s.clock.Now().UTC(),
		CreatedBy:          in.CreatedBy,
	}

	err := s.store.RunUnit(ctx, "billing.discount_grant", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedDiscount(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func exportedBankAccount(a *billdomain.BankAccount) map[string]any {
	return map[string]any{
		"bank_account_id":       a.ID,
		"member_id":             a.MemberID,
		"account_name":          a.AccountName,
		"bsb":                   a.BSB,
		"account_number_masked": a.AccountNumberMasked,
		"account_type":          a.AccountType,
		"purpose":               a.Purpose,
		"is_active":             a.IsActive,
		"is_verified":           a.IsVerified,
	}
}

func exportedInvoice(i *billdomain.Invoice) map[string]any {
	return map[string]any{
		"invoice_id":         i.ID,
		"invoice_number":     i.InvoiceNumber,
		"policy_id":          i.PolicyID,
		"invoice_date":       export.NewDate(i.InvoiceDate),
		"due_date":           export.NewDate(i.DueDate),
		"period_start":       export.NewDate(i.PeriodStart),
		"period_end":         export.NewDate(i.PeriodEnd),
		"invoice_status":     string(i.InvoiceStatus),
		"gross_premium":      i.GrossPremium,
		"lhc_loading_amount": i.LHCLoadingAmount,
		"rebate_amount":      i.RebateAmount,
		"net_amount":         i.NetAmount,
		"total_amount":       i.TotalAmount,
		"paid_amount":        i.PaidAmount,
		"balance_due":        i.BalanceDue,
	}
}

func exportedPayment(p *billdomain.Payment) map[string]any {
	values := map[string]any{
		"payment_id":     p.ID,
		"payment_number": p.PaymentNumber,
		"policy_id":      p.PolicyID,
		"payment_date":   export.NewDate(p.PaymentDate),
		"payment_amount": p.PaymentAmount,
		"payment_method": string(p.PaymentMethod),
		"payment_status": string(p.PaymentStatus),
	}
	if p.InvoiceID != nil {
		values["invoice_id"] = *p.InvoiceID
	}
	return values
}

func exportedMandate(m *billdomain.DirectDebitMandate) map[string]any {
	values := map[string]any{
		"direct_debit_id":      m.ID,
		"policy_id":            m.PolicyID,
		"bank_account_id":      m.BankAccountID,
		"debit_day":            m.DebitDay,
		"frequency":            m.Frequency,
		"mandate_reference":    m.MandateReference,
		"authorization_date":   export.NewDate(m.AuthorizationDate),
		"authorization_method": m.AuthorizationMethod,
		"status":               string(m.Status),
	}
	if m.CancellationDate != nil {
		values["cancellation_date"] = export.NewDate(*m.CancellationDate)
	}
	return values
}

func exportedDebitResult(r *billdomain.DirectDebitResult) map[string]any {
	values := map[string]any{
		"result_id":        r.ID,
		"direct_debit_id":  r.DirectDebitID,
		"attempt_date":     export.NewDate(r.AttemptDate),
		"attempt_number":   r.AttemptNumber,
		"requested_amount": r.RequestedAmount,
		"result_status":    string(r.ResultStatus),
		"retry_scheduled":  r.RetryScheduled,
	}
	if r.InvoiceID != nil {
		values["invoice_id"] = *r.InvoiceID
	}
	if r.PaymentID != nil {
		values["payment_id"] = *r.PaymentID
	}
	return values
}

func exportedArrears(a *billdomain.Arrears) map[string]any {
	return map[string]any{
		"arrears_id":     a.ID,
		"policy_id":      a.PolicyID,
		"invoice_id":     a.InvoiceID,
		"arrears_date":   export.NewDate(a.ArrearsDate),
		"arrears_amount": a.ArrearsAmount,
		"days_overdue":   a.DaysOverdue,
		"arrears_status": string(a.ArrearsStatus),
	}
}

func exportedRefund(r *billdomain.Refund) map[string]any {
	values := map[string]any{
		"refund_id":        r.ID,
		"refund_reference": r.RefundReference,
		"policy_id":        r.PolicyID,
		"refund_date":      export.NewDate(r.RefundDate),
		"refund_amount":    r.RefundAmount,
		"refund_reason":    r.RefundReason,
		"refund_type":      string(r.RefundType),
		"payment_method":   r.PaymentMethod,
		"status":           string(r.Status),
	}
	if r.MemberID != nil {
		values["member_id"] = *r.MemberID
	}
	return values
}

func exportedDiscount(d *billdomain.PremiumDiscount) map[string]any {
	return map[string]any{
		"premium_discount_id": d.ID,
		"policy_id":           d.PolicyID,
		"discount_type":       string(d.DiscountType),
		"discount_percentage": d.DiscountPercentage,
		"effective_date":      export.NewDate(d.EffectiveDate),
		"is_active":           d.IsActive,
	}
}
