package jobs

import "taxiledger/internal/core/types"

// SetClock replaces the date source of r.
func SetClock(r *Runner, today func() types.Date) {
	r.today = today
}
