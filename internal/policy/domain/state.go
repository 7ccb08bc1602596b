package domain

// policyTransitions is the policy lifecycle. Cancelled and Lapsed are
// terminal.
var policyTransitions = map[PolicyStatus]map[PolicyStatus]bool{
	PolicyActive: {
		PolicySuspended: true,
		PolicyCancelled: true,
		PolicyLapsed:    true,
	},
	PolicySuspended: {
		PolicyActive:    true,
		PolicyCancelled: true,
		PolicyLapsed:    true,
	},
}

// CanTransition reports whether a policy may move from one status to
// another.
func CanTransition(from, to PolicyStatus) bool {
	return policyTransitions[from][to]
}

// applicationTransitions is the application lifecycle. Every decision
// state is terminal.
var applicationTransitions = map[ApplicationStatus]map[ApplicationStatus]bool{
	ApplicationPending: {
		ApplicationApproved:  true,
		ApplicationDeclined:  true,
		ApplicationWithdrawn: true,
	},
}

// CanDecide reports whether an application may move between statuses.
func CanDecide(from, to ApplicationStatus) bool {
	return applicationTransitions[from][to]
}
