package entities

import "time"

type Choice string

const (
	ChoiceFor     Choice = "for"
	ChoiceAgainst Choice = "against"
	ChoiceAbstain Choice = "abstain"
)

func (c Choice) Valid() bool {
	switch c {
	case ChoiceFor, ChoiceAgainst, ChoiceAbstain:
		return true
	default:
		return false
	}
}

// VoteRecord is append-only. Power is the voter's registered power at cast
// time and is never recomputed.
type VoteRecord struct {
	VoteID     string
	ProposalID string
	VoterID    string
	Choice     Choice
	Power      float64
	CastAt     time.Time
}

type Tallies struct {
	For     float64
	Against float64
	Abstain float64
}

func (t Tallies) Total() float64 {
	return t.For + t.Against + t.Abstain
}

// Add returns the tallies with power credited to choice. Invalid choices are
// rejected by callers before this point.
func (t Tallies) Add(choice Choice, power float64) Tallies {
	switch choice {
	case ChoiceFor:
		t.For += power
	case ChoiceAgainst:
		t.Against += power
	case ChoiceAbstain:
		t.Abstain += power
	}
	return t
}
