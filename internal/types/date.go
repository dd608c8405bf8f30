package types

import (
	"fmt"
	"time"
)

// NextInstallmentDate calculates the due date of the i-th installment (1-based)
// relative to the given start time for the given frequency.
// For monthly frequency this uses true calendar-month arithmetic so that
// month-end start dates clamp to the last valid day of shorter months
// (Jan 31 -> Feb 28/29 -> Mar 31) instead of spilling into the next month.
// For weekly, biweekly and custom frequencies the due date is start + i*N days.
func NextInstallmentDate(start time.Time, frequency InstallmentFrequency, customDays int, i int) (time.Time, error) {
	if i < 0 {
		return start, fmt.Errorf("installment index must be non-negative, got %d", i)
	}

	switch frequency {
	case InstallmentFrequencyWeekly:
		return AddClampedDate(start, 0, 0, 7*i), nil
	case InstallmentFrequencyBiweekly:
		return AddClampedDate(start, 0, 0, 14*i), nil
	case InstallmentFrequencyMonthly:
		return AddClampedDate(start, 0, i, 0), nil
	case InstallmentFrequencyCustom:
		if customDays <= 0 {
			return start, fmt.Errorf("custom frequency requires a positive day interval, got %d", customDays)
		}
		return AddClampedDate(start, 0, 0, customDays*i), nil
	default:
		return start, fmt.Errorf("invalid installment frequency: %s", frequency)
	}
}

// AddClampedDate adds years, months and days to t, clamping the day of month
// to the last valid day of the target month. This differs from time.AddDate,
// which normalizes overflow (Jan 31 + 1 month = Mar 3) instead of clamping.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	// If we move beyond December, it adjusts correctly,
	// for example adding 2 months to November will land on January next year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d
	if newD > lastDay {
		// Clamp to last valid day
		newD = lastDay
	}

	result := time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
	if days != 0 {
		result = result.AddDate(0, 0, days)
	}
	return result
}
