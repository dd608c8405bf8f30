package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddClampedDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			name:   "mid month is unchanged",
			start:  date(2025, time.January, 15),
			months: 1,
			want:   date(2025, time.February, 15),
		},
		{
			name:   "jan 31 clamps to feb 28",
			start:  date(2025, time.January, 31),
			months: 1,
			want:   date(2025, time.February, 28),
		},
		{
			name:   "jan 31 clamps to feb 29 in a leap year",
			start:  date(2024, time.January, 31),
			months: 1,
			want:   date(2024, time.February, 29),
		},
		{
			name:   "jan 31 two months out lands back on the 31st",
			start:  date(2025, time.January, 31),
			months: 2,
			want:   date(2025, time.March, 31),
		},
		{
			name:   "november plus two months wraps the year",
			start:  date(2025, time.November, 30),
			months: 2,
			want:   date(2026, time.January, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddClampedDate(tt.start, 0, tt.months, 0)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}

	// time.AddDate normalizes overflow instead of clamping; make sure we do not
	normalized := date(2025, time.January, 31).AddDate(0, 1, 0)
	clamped := AddClampedDate(date(2025, time.January, 31), 0, 1, 0)
	assert.Equal(t, time.March, normalized.Month())
	assert.Equal(t, time.February, clamped.Month())
}

func TestNextInstallmentDate(t *testing.T) {
	start := date(2025, time.January, 15)

	tests := []struct {
		name       string
		frequency  InstallmentFrequency
		customDays int
		i          int
		want       time.Time
	}{
		{name: "weekly third installment", frequency: InstallmentFrequencyWeekly, i: 3, want: date(2025, time.February, 5)},
		{name: "biweekly second installment", frequency: InstallmentFrequencyBiweekly, i: 2, want: date(2025, time.February, 12)},
		{name: "monthly fifth installment", frequency: InstallmentFrequencyMonthly, i: 5, want: date(2025, time.June, 15)},
		{name: "custom ten day interval", frequency: InstallmentFrequencyCustom, customDays: 10, i: 2, want: date(2025, time.February, 4)},
		{name: "index zero is the start date", frequency: InstallmentFrequencyMonthly, i: 0, want: start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextInstallmentDate(start, tt.frequency, tt.customDays, tt.i)
			assert.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNextInstallmentDateErrors(t *testing.T) {
	start := date(2025, time.January, 15)

	_, err := NextInstallmentDate(start, InstallmentFrequencyMonthly, 0, -1)
	assert.Error(t, err)

	_, err = NextInstallmentDate(start, InstallmentFrequencyCustom, 0, 1)
	assert.Error(t, err)

	_, err = NextInstallmentDate(start, InstallmentFrequency("yearly"), 0, 1)
	assert.Error(t, err)
}

func TestNextInstallmentDateMonthlyClampsAcrossMonths(t *testing.T) {
	start := date(2025, time.January, 31)

	first, err := NextInstallmentDate(start, InstallmentFrequencyMonthly, 0, 1)
	assert.NoError(t, err)
	assert.Equal(t, date(2025, time.February, 28), first)

	second, err := NextInstallmentDate(start, InstallmentFrequencyMonthly, 0, 2)
	assert.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 31), second)
}
