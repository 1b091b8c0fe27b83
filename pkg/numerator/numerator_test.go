package numerator

import (
	"context"
	"testing"
	"time"

	corenumerator "taxiledger/internal/core/numerator"
)

func TestFormat(t *testing.T) {
	period := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  corenumerator.Config
		num  int64
		want string
	}{
		{"yearly", corenumerator.DefaultConfig("CAJ"), 7, "CAJ-2025-00007"},
		{"no year", corenumerator.Config{Prefix: "MOV", PadWidth: 3}, 42, "MOV-042"},
		{"default pad", corenumerator.Config{Prefix: "MOV"}, 1, "MOV-00001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.cfg, period, tt.num); got != tt.want {
				t.Errorf("Format() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildKey(t *testing.T) {
	period := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("CAJ")

	if got := BuildKey(cfg, period); got != "CAJ_2025" {
		t.Errorf("yearly key = %s", got)
	}
	cfg.ResetPeriod = corenumerator.ResetMonthly
	if got := BuildKey(cfg, period); got != "CAJ_2025_03" {
		t.Errorf("monthly key = %s", got)
	}
	cfg.ResetPeriod = corenumerator.ResetNever
	if got := BuildKey(cfg, period); got != "CAJ" {
		t.Errorf("never key = %s", got)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]int64{
		"CAJ-2025-00012": 12,
		"MOV-007":        7,
		"garbage":        -1,
		"CAJ-":           -1,
	}
	for in, want := range cases {
		if got := ParseNumber(in); got != want {
			t.Errorf("ParseNumber(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestMemory_Sequence(t *testing.T) {
	gen := NewMemory()
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("CAJ")
	y2025 := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	y2026 := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	first, _ := gen.GetNextNumber(ctx, cfg, nil, y2025)
	second, _ := gen.GetNextNumber(ctx, cfg, nil, y2025)
	nextYear, _ := gen.GetNextNumber(ctx, cfg, nil, y2026)

	if first != "CAJ-2025-00001" || second != "CAJ-2025-00002" {
		t.Errorf("unexpected sequence: %s, %s", first, second)
	}
	if nextYear != "CAJ-2026-00001" {
		t.Errorf("yearly reset expected, got %s", nextYear)
	}

	if err := gen.SetNextNumber(ctx, cfg, y2025, 100); err != nil {
		t.Fatal(err)
	}
	after, _ := gen.GetNextNumber(ctx, cfg, nil, y2025)
	if after != "CAJ-2025-00101" {
		t.Errorf("expected CAJ-2025-00101 after SetNextNumber, got %s", after)
	}
}
