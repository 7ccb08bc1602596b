package service

import (
	"context"
	"testing"
	"time"

	billdomain "github.com/brickwell/healthcore/internal/billing/domain"
	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/brickwell/healthcore/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *storetest.Harness) {
	t.Helper()
	h := storetest.New(t, []any{
		&billdomain.BankAccount{},
		&billdomain.Invoice{},
		&billdomain.Payment{},
		&billdomain.DirectDebitMandate{},
		&billdomain.DirectDebitResult{},
		&billdomain.Arrears{},
		&billdomain.Refund{},
		&billdomain.PremiumDiscount{},
	})
	svc := NewService(Params{Store: h.Store, Alloc: h.Alloc, Clock: h.Clock, Log: zap.NewNop()})
	return svc, h
}

func issueInvoice(t *testing.T, svc *Service, policyID uuid.UUID) *billdomain.Invoice {
	t.Helper()
	inv, err := svc.IssueInvoice(context.Background(), IssueInvoiceInput{
		PolicyID:         policyID,
		InvoiceDate:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:          time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		PeriodStart:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		GrossPremium:     decimal.RequireFromString("250.00"),
		LHCLoadingAmount: decimal.RequireFromString("25.00"),
		RebateAmount:     decimal.RequireFromString("62.50"),
		CreatedBy:        "test",
	})
	require.NoError(t, err)
	return inv
}

func TestIssueInvoice_DerivesTotals(t *testing.T) {
	svc, h := newTestService(t)

	inv := issueInvoice(t, svc, uuid.New())
	assert.Equal(t, "INV-W0-2024-000001", inv.InvoiceNumber)
	assert.Equal(t, billdomain.InvoiceIssued, inv.InvoiceStatus)
	assert.True(t, inv.NetAmount.Equal(decimal.RequireFromString("212.50")))
	assert.True(t, inv.TotalAmount.Equal(inv.NetAmount))
	assert.True(t, inv.BalanceDue.Equal(inv.TotalAmount))
	assert.True(t, inv.PaidAmount.IsZero())

	records := h.ChangeRecords(t, "invoices")
	require.Len(t, records, 1)
}

func TestIssueInvoice_RejectsNegativeNet(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.IssueInvoice(context.Background(), IssueInvoiceInput{
		PolicyID:     uuid.New(),
		InvoiceDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:      time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		PeriodStart:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:    time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		GrossPremium: decimal.RequireFromString("100.00"),
		RebateAmount: decimal.RequireFromString("150.00"),
		CreatedBy:    "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestApplyPayment_PartialThenFull(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	inv := issueInvoice(t, svc, uuid.New())

	pay, err := svc.ApplyPayment(ctx, ApplyPaymentInput{
		InvoiceID:   inv.ID,
		PaymentDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("100.00"),
		Method:      billdomain.MethodBPay,
		CreatedBy:   "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-W0-2024-000001", pay.PaymentNumber)
	assert.Equal(t, billdomain.PaymentCompleted, pay.PaymentStatus)

	var reloaded billdomain.Invoice
	require.NoError(t, h.DB.First(&reloaded, "invoice_id = ?", inv.ID).Error)
	assert.Equal(t, billdomain.InvoicePartiallyPaid, reloaded.InvoiceStatus)
	assert.True(t, reloaded.BalanceDue.Equal(decimal.RequireFromString("112.50")))
	assert.True(t, reloaded.BalanceDue.Equal(reloaded.TotalAmount.Sub(reloaded.PaidAmount)))

	_, err = svc.ApplyPayment(ctx, ApplyPaymentInput{
		InvoiceID:   inv.ID,
		PaymentDate: time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("112.50"),
		Method:      billdomain.MethodCard,
		CreatedBy:   "test",
	})
	require.NoError(t, err)

	require.NoError(t, h.DB.First(&reloaded, "invoice_id = ?", inv.ID).Error)
	assert.Equal(t, billdomain.InvoicePaid, reloaded.InvoiceStatus)
	assert.True(t, reloaded.BalanceDue.IsZero())

	_, err = svc.ApplyPayment(ctx, ApplyPaymentInput{
		InvoiceID:   inv.ID,
		PaymentDate: time.Date(2024, 2, 13, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("10.00"),
		Method:      billdomain.MethodCash,
		CreatedBy:   "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestApplyPayment_RejectsOverpayment(t *testing.T) {
	svc, _ := newTestService(t)

	inv := issueInvoice(t, svc, uuid.New())
	_, err := svc.ApplyPayment(context.Background(), ApplyPaymentInput{
		InvoiceID:   inv.ID,
		PaymentDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("500.00"),
		Method:      billdomain.MethodEFT,
		CreatedBy:   "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestApplyPayment_UnknownInvoice(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ApplyPayment(context.Background(), ApplyPaymentInput{
		InvoiceID:   uuid.New(),
		PaymentDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("10.00"),
		Method:      billdomain.MethodEFT,
		CreatedBy:   "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func registerAccount(t *testing.T, svc *Service) *billdomain.BankAccount {
	t.Helper()
	account, err := svc.RegisterBankAccount(context.Background(), RegisterBankAccountInput{
		MemberID:            uuid.New(),
		AccountName:         "J Citizen",
		BSB:                 "062-000",
		AccountNumberMasked: "****4321",
		AccountType:         "Savings",
		Purpose:             "PremiumDebit",
		CreatedBy:           "test",
	})
	require.NoError(t, err)
	return account
}

func TestDirectDebit_SuccessLinksOnePayment(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	policyID := uuid.New()
	inv := issueInvoice(t, svc, policyID)
	account := registerAccount(t, svc)

	mandate, err := svc.CreateMandate(ctx, CreateMandateInput{
		PolicyID:            policyID,
		BankAccountID:       account.ID,
		DebitDay:            15,
		AuthorizationDate:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		AuthorizationMethod: "Online",
		CreatedBy:           "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "DDR-W0-2024-000001", mandate.MandateReference)

	result, err := svc.RecordDebitResult(ctx, RecordDebitResultInput{
		MandateID:     mandate.ID,
		InvoiceID:     inv.ID,
		AttemptDate:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		AttemptNumber: 1,
		Status:        billdomain.DebitSuccess,
		CreatedBy:     "test",
	})
	require.NoError(t, err)
	require.NotNil(t, result.PaymentID)
	require.NotNil(t, result.SettlementDate)
	assert.True(t, result.RequestedAmount.Equal(inv.TotalAmount))

	var payment billdomain.Payment
	require.NoError(t, h.DB.First(&payment, "payment_id = ?", result.PaymentID).Error)
	assert.Equal(t, billdomain.MethodDirectDebit, payment.PaymentMethod)
	assert.True(t, payment.PaymentAmount.Equal(inv.TotalAmount))

	var reloaded billdomain.Invoice
	require.NoError(t, h.DB.First(&reloaded, "invoice_id = ?", inv.ID).Error)
	assert.Equal(t, billdomain.InvoicePaid, reloaded.InvoiceStatus)
}

func TestDirectDebit_FailureCarriesNoPayment(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	policyID := uuid.New()
	inv := issueInvoice(t, svc, policyID)
	account := registerAccount(t, svc)

	mandate, err := svc.CreateMandate(ctx, CreateMandateInput{
		PolicyID:            policyID,
		BankAccountID:       account.ID,
		DebitDay:            15,
		AuthorizationDate:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		AuthorizationMethod: "Phone",
		CreatedBy:           "test",
	})
	require.NoError(t, err)

	retry := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	result, err := svc.RecordDebitResult(ctx, RecordDebitResultInput{
		MandateID:      mandate.ID,
		InvoiceID:      inv.ID,
		AttemptDate:    time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		AttemptNumber:  1,
		Status:         billdomain.DebitInsufficientFunds,
		RetryScheduled: true,
		RetryDate:      &retry,
		CreatedBy:      "test",
	})
	require.NoError(t, err)
	assert.Nil(t, result.PaymentID)
	assert.Nil(t, result.SettlementDate)

	var count int64
	require.NoError(t, h.DB.Model(&billdomain.Payment{}).Count(&count).Error)
	assert.Zero(t, count)

	var reloaded billdomain.Invoice
	require.NoError(t, h.DB.First(&reloaded, "invoice_id = ?", inv.ID).Error)
	assert.Equal(t, billdomain.InvoiceIssued, reloaded.InvoiceStatus)
}

func TestRecordDebitResult_SuccessCannotScheduleRetry(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordDebitResult(context.Background(), RecordDebitResultInput{
		MandateID:      uuid.New(),
		InvoiceID:      uuid.New(),
		AttemptDate:    time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		AttemptNumber:  1,
		Status:         billdomain.DebitSuccess,
		RetryScheduled: true,
		CreatedBy:      "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestCancelMandate_BlocksFurtherDebits(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	policyID := uuid.New()
	inv := issueInvoice(t, svc, policyID)
	account := registerAccount(t, svc)

	mandate, err := svc.CreateMandate(ctx, CreateMandateInput{
		PolicyID:            policyID,
		BankAccountID:       account.ID,
		DebitDay:            10,
		AuthorizationDate:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		AuthorizationMethod: "PaperForm",
		CreatedBy:           "test",
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelMandate(ctx, mandate.ID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "member request")
	require.NoError(t, err)
	assert.Equal(t, billdomain.MandateCancelled, cancelled.Status)

	_, err = svc.RecordDebitResult(ctx, RecordDebitResultInput{
		MandateID:     mandate.ID,
		InvoiceID:     inv.ID,
		AttemptDate:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		AttemptNumber: 1,
		Status:        billdomain.DebitSuccess,
		CreatedBy:     "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestRaiseArrears_RequiresOverdueBalance(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	inv := issueInvoice(t, svc, uuid.New())

	// Not yet past due.
	_, err := svc.RaiseArrears(ctx, RaiseArrearsInput{
		InvoiceID:   inv.ID,
		ArrearsDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "test",
	})
	assert.True(t, domainerr.IsValidation(err))

	arrears, err := svc.RaiseArrears(ctx, RaiseArrearsInput{
		InvoiceID:   inv.ID,
		ArrearsDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "test",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, arrears.DaysOverdue)
	assert.True(t, arrears.ArrearsAmount.Equal(inv.BalanceDue))
	assert.Equal(t, billdomain.ArrearsCurrent, arrears.ArrearsStatus)

	var reloaded billdomain.Invoice
	require.NoError(t, h.DB.First(&reloaded, "invoice_id = ?", inv.ID).Error)
	assert.Equal(t, billdomain.InvoiceOverdue, reloaded.InvoiceStatus)

	resolved, err := svc.ResolveArrears(ctx, arrears.ID, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "Payment")
	require.NoError(t, err)
	assert.Equal(t, billdomain.ArrearsResolved, resolved.ArrearsStatus)

	_, err = svc.ResolveArrears(ctx, arrears.ID, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), "Payment")
	assert.True(t, domainerr.IsValidation(err))
}

func TestRaiseArrears_SettledInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inv := issueInvoice(t, svc, uuid.New())
	_, err := svc.ApplyPayment(ctx, ApplyPaymentInput{
		InvoiceID:   inv.ID,
		PaymentDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		Amount:      inv.TotalAmount,
		Method:      billdomain.MethodEFT,
		CreatedBy:   "test",
	})
	require.NoError(t, err)

	_, err = svc.RaiseArrears(ctx, RaiseArrearsInput{
		InvoiceID:   inv.ID,
		ArrearsDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestIssueRefund(t *testing.T) {
	svc, _ := newTestService(t)

	refund, err := svc.IssueRefund(context.Background(), IssueRefundInput{
		PolicyID:      uuid.New(),
		RefundDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("83.333"),
		Reason:        "Prorated refund for policy cancellation",
		Type:          billdomain.RefundCancellation,
		PaymentMethod: "EFT",
		CreatedBy:     "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "REF-W0-2024-000001", refund.RefundReference)
	assert.True(t, refund.RefundAmount.Equal(decimal.RequireFromString("83.33")))
	assert.Equal(t, billdomain.RefundProcessed, refund.Status)
	require.NotNil(t, refund.ProcessedDate)

	_, err = svc.IssueRefund(context.Background(), IssueRefundInput{
		PolicyID:      uuid.New(),
		RefundDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.Zero,
		Reason:        "nothing owed",
		Type:          billdomain.RefundOverpayment,
		PaymentMethod: "EFT",
		CreatedBy:     "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestGrantPremiumDiscount_Bounds(t *testing.T) {
	svc, _ := newTestService(t)

	in := GrantPremiumDiscountInput{
		PolicyID:      uuid.New(),
		Type:          billdomain.DiscountLoyalty,
		Percentage:    decimal.RequireFromString("4.00"),
		EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:     "test",
	}
	row, err := svc.GrantPremiumDiscount(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, row.IsActive)

	in.Percentage = decimal.RequireFromString("120.00")
	_, err = svc.GrantPremiumDiscount(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))

	in.Percentage = decimal.RequireFromString("4.00")
	in.Type = "Seasonal"
	_, err = svc.GrantPremiumDiscount(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))
}
