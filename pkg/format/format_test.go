package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.50", Currency(1234.5))
	assert.Equal(t, "$0.00", Currency(0))
	assert.Equal(t, "$1,000,000.00", Currency(1_000_000))
	assert.Equal(t, "-$50.00", Currency(-50))
	assert.Equal(t, "$0.29", Currency(0.29))
}

func TestCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{21000, "$21.0K"},
		{156000, "$156.0K"},
		{1560000, "$1.6M"},
		{950, "$950.0"},
		{999950, "$1.0M"},
		{2.5e9, "$2.5B"},
		{-4200, "-$4.2K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompactCurrency(tt.in), "in=%v", tt.in)
	}
	assert.Equal(t, "45.0K", CompactNumber(45000))
	assert.Equal(t, "3.0T", CompactNumber(3e12))
}

func TestProbabilityAndPercentage(t *testing.T) {
	assert.Equal(t, "65.0%", Probability(0.65))
	assert.Equal(t, "12.3%", Probability(0.123))
	assert.Equal(t, "0.0%", Probability(0))
	assert.Equal(t, "12.35%", Percentage(12.345, 2))
	assert.Equal(t, "7%", Percentage(7.2, 0))
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "0.6500", Price(0.65, 4))
	assert.Equal(t, "0.35", Price(0.349, 2))
}

func TestPnL(t *testing.T) {
	assert.Equal(t, PnLResult{Formatted: "+$12.50", Tone: ToneSuccess}, PnL(12.5))
	assert.Equal(t, PnLResult{Formatted: "-$3.00", Tone: ToneDanger}, PnL(-3))
	assert.Equal(t, PnLResult{Formatted: "$0.00", Tone: ToneNeutral}, PnL(0))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now, "now"},
		{now.Add(-time.Second), "1 second ago"},
		{now.Add(-2 * time.Hour), "2 hours ago"},
		{now.Add(-25 * time.Hour), "yesterday"},
		{now.Add(24 * time.Hour), "tomorrow"},
		{now.Add(72 * time.Hour), "in 3 days"},
		{now.Add(90 * time.Second), "in 2 minutes"},
		{now.Add(-40 * 24 * time.Hour), "last month"},
		{now.Add(-800 * 24 * time.Hour), "2 years ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeTime(tt.at, now), "at=%v", tt.at)
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Dec 31, 2024, 11:59 PM", Date(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "Jan 5, 2024, 09:07 AM", Date(time.Date(2024, 1, 5, 9, 7, 0, 0, time.UTC)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "hello...", Truncate("hello world", 8))
	assert.Equal(t, "比特币...", Truncate("比特币会涨到五万吗", 6))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "abc", Address("abc"))
	assert.Equal(t, "0x1234...5678", Address("0x1234567890abcdef1234567890abcdef12345678"))
	assert.Equal(t, "not-an...-all", Address("not-an-address-at-all"))
}
