package schedule

import (
	"github.com/lokhor/cleaning-scheduler/internal/catalog"
)

// Frequency thresholds in days. Monthly is a fixed 28-day window on
// purpose: calendar-month boundary logic would change the observed cadence.
const (
	weeklyDays      = 7
	fortnightlyDays = 14
	monthlyDays     = 28
)

// IsDue reports whether a task must run today.
//
// Daily tasks are always due. A task that has never run is always due. A
// negative day count (clock skew, corrupted state) is reported as not-due
// together with a DataQualityError; it must never read as "very overdue".
func IsDue(last *catalog.Date, freq catalog.Frequency, today catalog.Date) (bool, error) {
	if freq == catalog.Daily {
		return true, nil
	}
	if last == nil {
		return true, nil
	}

	days := today.DaysSince(*last)
	if days < 0 {
		return false, &DataQualityError{Reason: "last assigned date is in the future"}
	}

	switch freq {
	case catalog.Weekly:
		return days >= weeklyDays, nil
	case catalog.Fortnightly:
		return days >= fortnightlyDays, nil
	case catalog.Monthly:
		return days >= monthlyDays, nil
	default:
		return false, &DataQualityError{Reason: "unknown frequency " + string(freq)}
	}
}
