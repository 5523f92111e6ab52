// Package window resolves the business day processed by a run.
package window

import "time"

const (
	// Layout is the local, offset-less layout used for window bounds.
	Layout = "2006-01-02T15:04:05"

	businessDateLayout = "02/01/2006"
)

type Window struct {
	Day   time.Time // midnight of the business day in the resolver location
	Start string
	End   string
}

// Resolve returns the previous civil day of now in loc. Sundays are not
// processed: a Sunday target rolls back to the preceding Saturday.
func Resolve(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	if day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}

	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc)
	return Window{
		Day:   day,
		Start: day.Format(Layout),
		End:   end.Format(Layout),
	}
}

// Interval is the analytics interval filter "start/end".
func (w Window) Interval() string { return w.Start + "/" + w.End }

// BusinessDate formats the processed day as DD/MM/YYYY.
func (w Window) BusinessDate() string { return w.Day.Format(businessDateLayout) }

// ParseLocal parses a Start or End value back into loc.
func ParseLocal(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(Layout, s, loc)
}
