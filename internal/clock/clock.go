package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall time so status evaluation and expiry math can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a clock backed by time.Now in UTC.
func System() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(System),
)
