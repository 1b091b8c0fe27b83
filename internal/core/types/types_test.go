package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"2025-01", true},
		{"2025-12", true},
		{"2025-00", false},
		{"2025-13", false},
		{"25-01", false},
		{"2025-1", false},
		{"2025/01", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParsePeriod(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPeriod_FirstDayOfNext(t *testing.T) {
	assert.Equal(t, "01/02/2025", MustPeriod("2025-01").FirstDayOfNext().String())
	assert.Equal(t, "01/01/2026", MustPeriod("2025-12").FirstDayOfNext().String())
	assert.Equal(t, Period("2026-01"), MustPeriod("2025-12").Next())
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2025, time.March, 7)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"07/03/2025"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(d))

	var empty Date
	require.NoError(t, json.Unmarshal([]byte("null"), &empty))
	assert.True(t, empty.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"2025-03-07"`), &back))
}

func TestDate_DaysSince(t *testing.T) {
	a := MustDate("01/03/2025")
	b := MustDate("15/03/2025")
	assert.Equal(t, 14, b.DaysSince(a))
	assert.Equal(t, Period("2025-03"), b.Period())
}

func TestSignedDelta(t *testing.T) {
	amount := MustMoney("200")
	assert.True(t, SignedDelta(amount, true).Equal(MustMoney("200")))
	assert.True(t, SignedDelta(amount, false).Equal(MustMoney("-200")))
	assert.True(t, SumMoney(MustMoney("1.10"), MustMoney("2.20")).Equal(MustMoney("3.30")))
}
