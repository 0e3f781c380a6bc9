package entities

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

const DefaultVotingPower = 1.0

type Member struct {
	MemberID         string
	DisplayName      string
	VotingPower      float64
	Role             Role
	Verified         bool
	ProposalsCreated int
	VotesSubmitted   int
	RegisteredAt     time.Time
	UpdatedAt        time.Time
}
