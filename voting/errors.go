package voting

import "errors"

// Window state errors. The three closed-window reasons are deliberately
// distinct: clients show a different message for a program whose voting has
// not started, one whose timed window ran out, and one an admin closed.
var (
	ErrVotingNotStarted    = errors.New("voting has not started for this program")
	ErrVotingWindowElapsed = errors.New("voting window for this program has elapsed")
	ErrVotingClosed        = errors.New("voting for this program was closed")
)

var (
	ErrScoreOutOfRange = errors.New("score must be between 1 and 5")
	ErrInvalidWeights  = errors.New("invalid weight configuration")
	ErrDuplicateVote   = errors.New("a vote for this program was already submitted")
)
