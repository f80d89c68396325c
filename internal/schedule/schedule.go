package schedule

import (
	"fmt"
	"time"

	"steeple/internal/config"
)

// Service describes the weekly broadcast cadence: which weekday it falls on
// and what time of day (UTC) the service starts.
type Service struct {
	Weekday     time.Weekday
	StartHour   int
	StartMinute int
}

// FromConfig builds a Service from validated configuration.
func FromConfig(cfg *config.Config) (Service, error) {
	weekday, err := cfg.ServiceWeekday()
	if err != nil {
		return Service{}, err
	}
	hour, minute, err := cfg.ServiceStart()
	if err != nil {
		return Service{}, err
	}
	return Service{Weekday: weekday, StartHour: hour, StartMinute: minute}, nil
}

// Dates returns the ordered weekly sequence anchor, anchor+7d, ... up to and
// including the last date <= end. The anchor must already fall on the service
// weekday; that precondition is enforced by config validation, not here.
func Dates(anchor, end time.Time) []time.Time {
	anchor = truncateToDay(anchor)
	end = truncateToDay(end)

	var dates []time.Time
	for current := anchor; !current.After(end); current = current.AddDate(0, 0, 7) {
		dates = append(dates, current)
	}
	return dates
}

// CurrentWeek returns the most recent service date at or before now.
func (s Service) CurrentWeek(now time.Time) time.Time {
	date := truncateToDay(now.UTC())
	offset := int(date.Weekday() - s.Weekday)
	if offset < 0 {
		offset += 7
	}
	return date.AddDate(0, 0, -offset)
}

// Title derives the human-readable episode title for a service date, e.g.
// "Sunday, September 07, 2025". Episode identity on the publishing platform
// hangs on this exact string.
func (s Service) Title(date time.Time) string {
	return date.Format("Monday, January 02, 2006")
}

// StartsAt formats the service start instant for episode-time records:
// YYYY-MM-DDThh:mm:ssZ.
func (s Service) StartsAt(date time.Time) string {
	return fmt.Sprintf("%sT%02d:%02d:00Z", date.Format("2006-01-02"), s.StartHour, s.StartMinute)
}

// PublishedToLibraryAt formats the same instant in the offset-qualified form
// the platform expects for library timestamps: YYYY-MM-DDThh:mm:ss+00:00.
func (s Service) PublishedToLibraryAt(date time.Time) string {
	return fmt.Sprintf("%sT%02d:%02d:00+00:00", date.Format("2006-01-02"), s.StartHour, s.StartMinute)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
