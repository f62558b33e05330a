package model

import "time"

// Companions counts the travellers on a trip besides the owner.
type Companions struct {
	Adults   int
	Children int
	Infants  int
	Seniors  int
}

// Draft is the set of trip parameters a user submits before an itinerary exists.
// The generation pipeline only reads it.
type Draft struct {
	ID           string
	UserID       string // owner
	Origin       string
	Destinations []string
	StartDate    time.Time
	EndDate      time.Time
	Budget       int64
	Currency     string
	Purposes     []string
	Companions   Companions
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Dates expands the inclusive [StartDate, EndDate] range into calendar dates.
// An inverted range yields no dates.
func (d *Draft) Dates() []time.Time {
	start := truncateDay(d.StartDate)
	end := truncateDay(d.EndDate)
	if end.Before(start) {
		return nil
	}
	var out []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}

// DayCount is the number of calendar days covered by the draft.
func (d *Draft) DayCount() int {
	return len(d.Dates())
}

func truncateDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
