package service

import "time"

// Calendar resolves "today" for the progress views. All services share one so
// day boundaries agree between streak writes and calendar reads.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

// NewCalendar returns a Calendar in loc using the wall clock. A nil loc means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, Now: time.Now}
}

// Today returns the current instant in the calendar's location
func (c Calendar) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.loc())
}

// DayBounds returns [midnight, next midnight) of the day containing t
func (c Calendar) DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(c.loc())
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
	return start, start.AddDate(0, 0, 1)
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
