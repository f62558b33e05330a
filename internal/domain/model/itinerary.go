package model

// WeatherUnknown is used when the provider omits the weather of an activity.
const WeatherUnknown = "UNKNOWN"

type Activity struct {
	Time       string `json:"time" validate:"required,hhmm"`
	Location   string `json:"location" validate:"min=1,max=200"`
	Content    string `json:"content" validate:"min=1,max=500"`
	URL        string `json:"url,omitempty" validate:"omitempty,url"`
	Weather    string `json:"weather" validate:"min=3,max=20"`
	OrderIndex int    `json:"orderIndex" validate:"gte=0"`
}

// Day is one generated itinerary day. DayIndex is 0-based and equals the
// chronological rank of Date within the draft.
type Day struct {
	DayIndex   int        `json:"dayIndex" validate:"gte=0"`
	Date       string     `json:"date" validate:"required"`
	Activities []Activity `json:"activities" validate:"required,dive"`
}

// Itinerary is the normalized document stored on a succeeded job.
type Itinerary struct {
	Title string `json:"title"`
	Days  []Day  `json:"days"`
}
