package domain

// TriggerEventType tags the upstream event that caused an engagement
// row. The tag names an entity family; a non-nil trigger pair must
// resolve to a real row in that family's table.
type TriggerEventType string

const (
	TriggerClaimSubmitted  TriggerEventType = "ClaimSubmitted"
	TriggerClaimPaid       TriggerEventType = "ClaimPaid"
	TriggerClaimRejected   TriggerEventType = "ClaimRejected"
	TriggerClaimDelayed    TriggerEventType = "ClaimDelayed"
	TriggerInvoiceIssued   TriggerEventType = "InvoiceIssued"
	TriggerPaymentFailed   TriggerEventType = "PaymentFailed"
	TriggerArrearsCreated  TriggerEventType = "ArrearsCreated"
	TriggerPolicySuspended TriggerEventType = "PolicySuspended"
	TriggerRenewalReminder TriggerEventType = "RenewalReminder"
)

// TriggerTarget is the table and key column a trigger event id must
// resolve against.
type TriggerTarget struct {
	Table    string
	IDColumn string
}

var triggerTargets = map[TriggerEventType]TriggerTarget{
	TriggerClaimSubmitted:  {"claims", "claim_id"},
	TriggerClaimPaid:       {"claims", "claim_id"},
	TriggerClaimRejected:   {"claims", "claim_id"},
	TriggerClaimDelayed:    {"claims", "claim_id"},
	TriggerInvoiceIssued:   {"invoices", "invoice_id"},
	TriggerPaymentFailed:   {"payments", "payment_id"},
	TriggerArrearsCreated:  {"arrears", "arrears_id"},
	TriggerPolicySuspended: {"policies", "policy_id"},
	TriggerRenewalReminder: {"policies", "policy_id"},
}

// Target resolves the entity family a trigger type points at. The
// second return is false for unknown tags.
func (t TriggerEventType) Target() (TriggerTarget, bool) {
	tgt, ok := triggerTargets[t]
	return tgt, ok
}
