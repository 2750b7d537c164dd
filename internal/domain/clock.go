package domain

import "github.com/jonboulle/clockwork"

// clock stamps StationLevel.ClassifiedAt. Tests and fixture generators freeze
// it via SetClock so output is reproducible.
var clock = clockwork.NewRealClock()

// SetClock swaps the classification time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
