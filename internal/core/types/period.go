package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Period is a calendar month an accrual belongs to, formatted YYYY-MM.
type Period string

// ParsePeriod validates s against the YYYY-MM format.
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return "", fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return Period(s), nil
}

// MustPeriod parses s or panics. Use only for constants and tests.
func MustPeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period(t.Format("2006-01"))
}

// Valid reports whether p matches YYYY-MM.
func (p Period) Valid() bool {
	return periodPattern.MatchString(string(p))
}

func (p Period) String() string { return string(p) }

// Start returns the first day of the period (UTC).
func (p Period) Start() Date {
	t, err := time.Parse("2006-01", string(p))
	if err != nil {
		return Date{}
	}
	return DateOf(t)
}

// Next returns the following period.
func (p Period) Next() Period {
	return PeriodOf(p.Start().Time().AddDate(0, 1, 0))
}

// FirstDayOfNext returns the first day of the following period.
func (p Period) FirstDayOfNext() Date {
	return p.Next().Start()
}

// UnmarshalJSON rejects malformed periods at the boundary.
func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*p = ""
		return nil
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer.
func (p Period) Value() (driver.Value, error) {
	return string(p), nil
}

// Scan implements sql.Scanner.
func (p *Period) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*p = Period(v)
	case []byte:
		*p = Period(v)
	case nil:
		*p = ""
	default:
		return fmt.Errorf("cannot scan %T into Period", src)
	}
	return nil
}
