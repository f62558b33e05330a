package generation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"trip-itinerary-ai/internal/domain/model"
)

// ErrNoValidDays is the schema failure of a response without a single usable day.
var ErrNoValidDays = errors.New("no valid days")

var (
	dayValidate    *validator.Validate
	envelope       *gojsonschema.Schema
	hhmmPattern    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	errWrongType   = errors.New("wrong type")
	errMissingPart = errors.New("missing field")
)

func init() {
	dayValidate = validator.New()
	_ = dayValidate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})

	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchema))
	if err != nil {
		panic(fmt.Sprintf("generation: compile envelope schema: %v", err))
	}
	envelope = s
}

// DayError describes why the day at Position was dropped.
type DayError struct {
	Position int
	Reason   string
}

// ValidationResult is the outcome of validating a parsed response.
type ValidationResult struct {
	Title        string
	ValidDays    []model.Day
	Submitted    int
	AllDaysValid bool
	EnvelopeErrs []string
	DayErrors    []DayError
}

// PartialDays lists the dayIndex of every valid day in ascending order.
func (r *ValidationResult) PartialDays() []int {
	days := make([]int, 0, len(r.ValidDays))
	for _, d := range r.ValidDays {
		days = append(days, d.DayIndex)
	}
	return model.NormalizeDays(days)
}

// Itinerary returns the normalized document made of the valid days only.
func (r *ValidationResult) Itinerary() model.Itinerary {
	return model.Itinerary{Title: r.Title, Days: r.ValidDays}
}

// Validate checks the top level against the itinerary schema and every day on
// its own. A day that fails is dropped while its siblings are kept. It returns
// ErrNoValidDays (with the partial result) when nothing usable is left.
func Validate(parsed map[string]any) (*ValidationResult, error) {
	res := &ValidationResult{}

	envRes, err := envelope.Validate(gojsonschema.NewGoLoader(parsed))
	if err != nil {
		return res, fmt.Errorf("validate envelope: %w", err)
	}
	for _, e := range envRes.Errors() {
		res.EnvelopeErrs = append(res.EnvelopeErrs, e.String())
	}

	if title, ok := parsed["title"].(string); ok {
		res.Title = strings.TrimSpace(title)
	}

	rawDays, _ := parsed["days"].([]any)
	res.Submitted = len(rawDays)
	for i, raw := range rawDays {
		day, err := normalizeDay(raw)
		if err == nil {
			err = dayValidate.Struct(day)
		}
		if err != nil {
			res.DayErrors = append(res.DayErrors, DayError{Position: i, Reason: err.Error()})
			continue
		}
		res.ValidDays = append(res.ValidDays, *day)
	}

	res.AllDaysValid = envRes.Valid() && len(res.ValidDays) == res.Submitted
	if len(res.ValidDays) == 0 {
		return res, ErrNoValidDays
	}
	return res, nil
}

// normalizeDay converts a raw day into model.Day, applying defaults for
// optional activity fields and ordering activities by orderIndex.
func normalizeDay(raw any) (*model.Day, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("day: %w", errWrongType)
	}

	idx, err := intField(obj, "dayIndex")
	if err != nil {
		return nil, err
	}
	date, err := stringField(obj, "date", true)
	if err != nil {
		return nil, err
	}
	rawActs, ok := obj["activities"].([]any)
	if !ok {
		return nil, fmt.Errorf("activities: %w", errWrongType)
	}

	day := &model.Day{DayIndex: idx, Date: date, Activities: make([]model.Activity, 0, len(rawActs))}
	for pos, ra := range rawActs {
		act, err := normalizeActivity(ra, pos)
		if err != nil {
			return nil, fmt.Errorf("activities[%d]: %w", pos, err)
		}
		day.Activities = append(day.Activities, act)
	}
	sort.SliceStable(day.Activities, func(i, j int) bool {
		return day.Activities[i].OrderIndex < day.Activities[j].OrderIndex
	})
	return day, nil
}

func normalizeActivity(raw any, pos int) (model.Activity, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.Activity{}, errWrongType
	}
	var act model.Activity
	var err error
	if act.Time, err = stringField(obj, "time", true); err != nil {
		return act, err
	}
	if act.Location, err = stringField(obj, "location", true); err != nil {
		return act, err
	}
	if act.Content, err = stringField(obj, "content", true); err != nil {
		return act, err
	}
	if act.URL, err = stringField(obj, "url", false); err != nil {
		return act, err
	}
	if act.Weather, err = stringField(obj, "weather", false); err != nil {
		return act, err
	}
	if act.Weather == "" {
		act.Weather = model.WeatherUnknown
	}

	// Missing, null or non-finite orderIndex falls back to the position.
	act.OrderIndex = pos
	switch v := obj["orderIndex"].(type) {
	case nil:
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			break
		}
		if v != math.Trunc(v) {
			return act, fmt.Errorf("orderIndex: %w", errWrongType)
		}
		act.OrderIndex = int(v)
	default:
		return act, fmt.Errorf("orderIndex: %w", errWrongType)
	}
	return act, nil
}

func intField(obj map[string]any, key string) (int, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%s: %w", key, errMissingPart)
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: %w", key, errWrongType)
	}
	return int(f), nil
}

// stringField reads a trimmed string. Optional fields accept null or absence.
func stringField(obj map[string]any, key string, required bool) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%s: %w", key, errMissingPart)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, errWrongType)
	}
	return strings.TrimSpace(s), nil
}
