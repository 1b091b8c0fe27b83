package fuel

import "taxiledger/internal/core/types"

// SetClock replaces the date source of s.
func SetClock(s *Service, today func() types.Date) {
	s.today = today
}
