package voting

import "time"

// Program voting lifecycle. A program is opened and closed explicitly by an
// administrator; window expiry is evaluated lazily against the stored end
// timestamp, never by a timer.
const (
	StatusNotStarted   = 0
	StatusVotingOpen   = 1
	StatusVotingClosed = 2
)

// VoteGracePeriod is the tolerance added after the nominal window end to
// absorb client and network submission latency.
const VoteGracePeriod = 60 * time.Second

// IsVotingActive reports whether a program accepts votes at the given
// instant. A program with status open and no end timestamp relies on status
// alone; with an end timestamp, votes are accepted until end plus the grace
// period.
func IsVotingActive(status int, endAt *time.Time, now time.Time) bool {
	if status != StatusVotingOpen {
		return false
	}
	if endAt == nil {
		return true
	}
	return now.Before(endAt.Add(VoteGracePeriod))
}

// RemainingVoteTime returns the seconds left in the window as reported to
// clients. Inside the grace band around the nominal end (raw remaining in
// (-grace, +grace]) it reports a small positive remainder instead of zero so
// clients can show an imminent-close countdown rather than cutting off.
func RemainingVoteTime(status int, endAt *time.Time, now time.Time) int {
	if status != StatusVotingOpen || endAt == nil {
		return 0
	}
	grace := int(VoteGracePeriod / time.Second)
	remaining := int(endAt.Sub(now) / time.Second)
	if remaining <= grace && remaining > -grace {
		if remaining+grace < 1 {
			return 1
		}
		return remaining + grace
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ActiveError explains why a program is not accepting votes, distinguishing
// the three reasons. Returns nil when voting is active.
func ActiveError(status int, endAt *time.Time, now time.Time) error {
	switch status {
	case StatusNotStarted:
		return ErrVotingNotStarted
	case StatusVotingClosed:
		return ErrVotingClosed
	case StatusVotingOpen:
		if IsVotingActive(status, endAt, now) {
			return nil
		}
		return ErrVotingWindowElapsed
	}
	return ErrVotingNotStarted
}
