package domain

import "time"

type State string

const (
	StatePerpetual    State = "perpetual"
	StateActive       State = "active"
	StateExpiringSoon State = "expiring_soon"
	StateExpired      State = "expired"
)

// ExpiringSoonWindow is the remaining lifetime at or under which a subscription is flagged.
const ExpiringSoonWindow = 30 * 24 * time.Hour

const day = 24 * time.Hour

// Status is derived on every read and never stored.
type Status struct {
	State         State `json:"state"`
	DaysRemaining int   `json:"days_remaining"`
}

// Evaluate derives the subscription status from a nullable expiry.
// A nil expiry is perpetual. expiry == now is already expired.
func Evaluate(expiry *time.Time, now time.Time) Status {
	if expiry == nil {
		return Status{State: StatePerpetual}
	}

	remaining := expiry.Sub(now)
	if remaining <= 0 {
		return Status{State: StateExpired}
	}

	days := int(remaining / day)
	if remaining%day != 0 {
		days++
	}

	if remaining <= ExpiringSoonWindow {
		return Status{State: StateExpiringSoon, DaysRemaining: days}
	}
	return Status{State: StateActive, DaysRemaining: days}
}
