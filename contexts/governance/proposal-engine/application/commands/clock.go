package commands

import (
	"time"

	"govengine/contexts/governance/proposal-engine/ports"
)

// readClock reads the time once per operation; every comparison and
// timestamp in that operation uses the returned value.
func readClock(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}
