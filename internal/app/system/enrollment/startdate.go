// internal/app/system/enrollment/startdate.go
package enrollment

import (
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
)

// noonCutoffHour: an individual enrollment started before noon begins
// today, otherwise tomorrow, so day-1 content is always fully available on
// the enrollee's actual first day. Other first-day computations in the
// wider system use the same cutoff; keep them in sync.
const noonCutoffHour = 12

// GroupStart computes the status and start date for a group enrollment.
// The comparison is date-only in the given location: a cohort starting
// later today is already "active".
func GroupStart(cohortStart, now time.Time, loc *time.Location) (status string, start time.Time) {
	startDay := dateOnly(cohortStart, loc)
	today := dateOnly(now, loc)
	if startDay.After(today) {
		return models.EnrollmentUpcoming, startDay
	}
	return models.EnrollmentActive, today
}

// IndividualStart computes the start date for an individual enrollment
// using the noon cutoff.
func IndividualStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	day := dateOnly(now, loc)
	if local.Hour() >= noonCutoffHour {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// dateOnly truncates t to midnight in loc.
func dateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// locationFor resolves an organization's time zone, falling back to UTC for
// missing or bad names.
func locationFor(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
