package errors

import "errors"

// Kind classifies domain failures so transports can branch without matching
// on message text. All kinds are business-rule failures and never transient.
type Kind string

const (
	KindUnknown    Kind = ""
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindState      Kind = "state"
)

// Error is a tagged domain error. Values are compared by identity, so callers
// use errors.Is against the exported sentinels below.
type Error struct {
	kind    Kind
	code    string
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Code() string {
	return e.code
}

func newError(kind Kind, code string, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

var (
	ErrMemberNotFound   = newError(KindNotFound, "member_not_found", "member not found")
	ErrProposerNotFound = newError(KindNotFound, "proposer_not_found", "proposer not found")
	ErrProposalNotFound = newError(KindNotFound, "proposal_not_found", "proposal not found")
	ErrVoterNotFound    = newError(KindNotFound, "voter_not_found", "voter not found")

	ErrInvalidChoice         = newError(KindValidation, "invalid_choice", "vote choice must be one of for, against, abstain")
	ErrInvalidThreshold      = newError(KindValidation, "invalid_threshold", "threshold must be within [0,1]")
	ErrInvalidMemberInput    = newError(KindValidation, "invalid_member_input", "member input is invalid")
	ErrInvalidVotingPower    = newError(KindValidation, "invalid_voting_power", "voting power must be a non-negative number")
	ErrInvalidRole           = newError(KindValidation, "invalid_role", "role must be admin or member")
	ErrInvalidProposalInput  = newError(KindValidation, "invalid_proposal_input", "proposal input is invalid")
	ErrUnknownProposalOption = newError(KindValidation, "unknown_proposal_option", "proposal option is not recognized")

	ErrVotingClosed             = newError(KindState, "voting_closed", "voting is closed for this proposal")
	ErrDuplicateVote            = newError(KindState, "duplicate_vote", "member has already voted on this proposal")
	ErrAlreadyFinalized         = newError(KindState, "already_finalized", "proposal is already finalized")
	ErrNotApproved              = newError(KindState, "not_approved", "proposal is not approved")
	ErrExecutionDelayNotElapsed = newError(KindState, "execution_delay_not_elapsed", "execution delay has not elapsed")
	ErrInvalidTransition        = newError(KindState, "invalid_transition", "proposal status transition is not allowed")
)

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.kind
	}
	return KindUnknown
}

// Code returns the stable snake_case code of a domain error, or
// "internal_error" for anything else.
func Code(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.code
	}
	return "internal_error"
}
