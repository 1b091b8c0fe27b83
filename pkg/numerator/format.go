// Package numerator formats voucher numbers and provides an in-process sequence source.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	corenumerator "taxiledger/internal/core/numerator"
)

// BuildKey creates the sequence key based on config and period.
func BuildKey(cfg corenumerator.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case corenumerator.ResetMonthly:
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case corenumerator.ResetYearly:
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// Format creates the final number string.
func Format(cfg corenumerator.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	idx := strings.LastIndex(formatted, "-")
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}
	num, err := strconv.ParseInt(formatted[idx+1:], 10, 64)
	if err != nil {
		return -1
	}
	return num
}
