package domain

// claimTransitions is the claim lifecycle. Rejected and Paid are
// terminal; a claim never jumps from Submitted to Paid.
var claimTransitions = map[ClaimStatus]map[ClaimStatus]bool{
	ClaimSubmitted: {
		ClaimAssessed: true,
	},
	ClaimAssessed: {
		ClaimApproved:          true,
		ClaimPartiallyApproved: true,
		ClaimRejected:          true,
	},
	ClaimApproved: {
		ClaimPaid: true,
	},
	ClaimPartiallyApproved: {
		ClaimPaid: true,
	},
}

// CanTransition reports whether a claim may move between statuses.
func CanTransition(from, to ClaimStatus) bool {
	return claimTransitions[from][to]
}
