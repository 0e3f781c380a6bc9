package entities

import "time"

// statusRank orders the lifecycle; a status never moves to a lower rank.
// approved and rejected share a rank because they are alternative outcomes.
var statusRank = map[ProposalStatus]int{
	ProposalStatusActive:   0,
	ProposalStatusClosed:   1,
	ProposalStatusApproved: 2,
	ProposalStatusRejected: 2,
	ProposalStatusExecuted: 3,
}

var allowedTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusActive:   {ProposalStatusClosed, ProposalStatusApproved, ProposalStatusRejected},
	ProposalStatusClosed:   {ProposalStatusApproved, ProposalStatusRejected},
	ProposalStatusApproved: {ProposalStatusExecuted},
}

// CanTransition reports whether from -> to is an edge of the lifecycle:
//
//	active -> closed -> approved | rejected -> executed (approved only)
//	active -> approved | rejected
func CanTransition(from ProposalStatus, to ProposalStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusRank exposes the monotonic ordering used by CanTransition.
func StatusRank(status ProposalStatus) int {
	rank, ok := statusRank[status]
	if !ok {
		return -1
	}
	return rank
}

// DeriveStatus returns the status the proposal has at now. The only implicit
// transition is expiry: an active proposal whose voting window has passed is
// closed. Callers that mutate must persist the derived status themselves.
func DeriveStatus(p Proposal, now time.Time) ProposalStatus {
	if p.Status == ProposalStatusActive && now.After(p.VotingEndsAt) {
		return ProposalStatusClosed
	}
	return p.Status
}

// AcceptsVotes reports whether a vote cast at now falls inside the window of
// an active proposal.
func AcceptsVotes(p Proposal, now time.Time) bool {
	return DeriveStatus(p, now) == ProposalStatusActive && !now.Before(p.VotingStartsAt)
}
