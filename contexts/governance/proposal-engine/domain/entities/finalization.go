package entities

import "time"

// FinalizationInput is everything the outcome depends on. TotalVotingPower is
// the directory aggregate at finalize time, not a snapshot from creation.
type FinalizationInput struct {
	Tallies           Tallies
	TotalVotingPower  float64
	QuorumThreshold   float64
	ApprovalThreshold float64
	VotingEndsAt      time.Time
	Now               time.Time
}

// Finalize converts tallies into an outcome. A zero denominator yields a rate
// of 0 and the corresponding check is never met, whatever the threshold.
func Finalize(in FinalizationInput) (ProposalStatus, FinalizationResult) {
	participationRate := 0.0
	if in.TotalVotingPower > 0 {
		participationRate = in.Tallies.Total() / in.TotalVotingPower
	}

	decisive := in.Tallies.For + in.Tallies.Against
	approvalRate := 0.0
	if decisive > 0 {
		approvalRate = in.Tallies.For / decisive
	}

	quorumMet := in.TotalVotingPower > 0 && participationRate >= in.QuorumThreshold
	approvalMet := decisive > 0 && approvalRate >= in.ApprovalThreshold

	status := ProposalStatusRejected
	if quorumMet && approvalMet {
		status = ProposalStatusApproved
	}
	return status, FinalizationResult{
		QuorumMet:         quorumMet,
		ApprovalMet:       approvalMet,
		ParticipationRate: participationRate,
		ApprovalRate:      approvalRate,
		TotalVotingPower:  in.TotalVotingPower,
		EarlyFinalization: in.Now.Before(in.VotingEndsAt),
		FinalizedAt:       in.Now,
	}
}

// ValidThreshold reports whether value is a fraction in [0,1]. NaN fails.
func ValidThreshold(value float64) bool {
	return value >= 0 && value <= 1
}
