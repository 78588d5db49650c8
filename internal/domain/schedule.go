package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinDailyQuestions = 1
	MaxDailyQuestions = 20
)

// FrequencyKind selects which days a scheduled quiz may fire on
type FrequencyKind string

const (
	FrequencyDaily      FrequencyKind = "daily"
	FrequencyEveryNDays FrequencyKind = "every_n_days"
	FrequencyWeekdays   FrequencyKind = "weekdays"
)

// Frequency is the day rule of a user's schedule
type Frequency struct {
	Kind         FrequencyKind
	IntervalDays int
	Weekdays     []time.Weekday
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseFrequency reads "daily", "every:N" or "weekdays:mon,wed,fri".
func ParseFrequency(s string) (Frequency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(FrequencyDaily) {
		return Frequency{Kind: FrequencyDaily}, nil
	}

	kind, arg, found := strings.Cut(s, ":")
	if !found || arg == "" {
		return Frequency{}, fmt.Errorf("invalid frequency %q", s)
	}

	switch kind {
	case "every", string(FrequencyEveryNDays):
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n < 1 {
			return Frequency{}, fmt.Errorf("invalid day interval %q", arg)
		}
		if n == 1 {
			return Frequency{Kind: FrequencyDaily}, nil
		}
		return Frequency{Kind: FrequencyEveryNDays, IntervalDays: n}, nil
	case string(FrequencyWeekdays):
		var days []time.Weekday
		seen := make(map[time.Weekday]bool)
		for _, name := range strings.Split(arg, ",") {
			wd, ok := weekdayNames[strings.TrimSpace(name)]
			if !ok {
				return Frequency{}, fmt.Errorf("unknown weekday %q", name)
			}
			if !seen[wd] {
				seen[wd] = true
				days = append(days, wd)
			}
		}
		return Frequency{Kind: FrequencyWeekdays, Weekdays: days}, nil
	default:
		return Frequency{}, fmt.Errorf("invalid frequency %q", s)
	}
}

func (f Frequency) String() string {
	switch f.Kind {
	case FrequencyEveryNDays:
		return fmt.Sprintf("every:%d", f.IntervalDays)
	case FrequencyWeekdays:
		names := make([]string, len(f.Weekdays))
		for i, wd := range f.Weekdays {
			names[i] = strings.ToLower(wd.String()[:3])
		}
		return string(FrequencyWeekdays) + ":" + strings.Join(names, ",")
	default:
		return string(FrequencyDaily)
	}
}

// Eligible reports whether a slot on slotDay may fire given the previous firing.
func (f Frequency) Eligible(slotDay time.Time, lastFired *time.Time) bool {
	switch f.Kind {
	case FrequencyWeekdays:
		for _, wd := range f.Weekdays {
			if slotDay.Weekday() == wd {
				return true
			}
		}
		return false
	case FrequencyEveryNDays:
		if lastFired == nil {
			return true
		}
		return daysBetween(lastFired.In(slotDay.Location()), slotDay) >= f.IntervalDays
	default:
		return true
	}
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ParseClock reads "HH:MM" in 24-hour time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// UserSettings holds the per-user generation and schedule preferences
type UserSettings struct {
	OwnerID            string
	DailyQuizTime      string
	Timezone           string
	Frequency          Frequency
	MinQuestions       int
	MaxQuestions       int
	DailyQuestionCount int
	LastFiredAt        *time.Time
	UpdatedAt          time.Time
}

func (u *UserSettings) Location() (*time.Location, error) {
	if u.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", u.Timezone, err)
	}
	return loc, nil
}

// DueSlot returns the configured slot that now falls into, if it has not
// fired yet. A slot is open for window after its start; later checks skip it.
func (u *UserSettings) DueSlot(now time.Time, window time.Duration) (time.Time, bool, error) {
	loc, err := u.Location()
	if err != nil {
		return time.Time{}, false, err
	}
	hour, minute, err := ParseClock(u.DailyQuizTime)
	if err != nil {
		return time.Time{}, false, err
	}

	local := now.In(loc)
	// yesterday's slot can still be open shortly after midnight
	for _, offset := range []int{0, -1} {
		slot := time.Date(local.Year(), local.Month(), local.Day()+offset, hour, minute, 0, 0, loc)
		if now.Before(slot) || !now.Before(slot.Add(window)) {
			continue
		}
		if u.LastFiredAt != nil && !u.LastFiredAt.Before(slot) {
			return time.Time{}, false, nil
		}
		if !u.Frequency.Eligible(slot, u.LastFiredAt) {
			return time.Time{}, false, nil
		}
		return slot, true, nil
	}
	return time.Time{}, false, nil
}

// Validate checks the settings against the generation ceiling.
func (u *UserSettings) Validate(maxQuestionsCeiling int) ValidationErrors {
	var errs ValidationErrors
	if _, _, err := ParseClock(u.DailyQuizTime); err != nil {
		errs = append(errs, NewInvalidFormatError("daily_quiz_time", u.DailyQuizTime))
	}
	if _, err := u.Location(); err != nil {
		errs = append(errs, NewInvalidFormatError("timezone", u.Timezone))
	}
	if u.MinQuestions < 1 || u.MinQuestions > maxQuestionsCeiling {
		errs = append(errs, NewOutOfRangeError("min_questions", u.MinQuestions, 1, maxQuestionsCeiling))
	}
	if u.MaxQuestions < u.MinQuestions || u.MaxQuestions > maxQuestionsCeiling {
		errs = append(errs, NewOutOfRangeError("max_questions", u.MaxQuestions, u.MinQuestions, maxQuestionsCeiling))
	}
	if u.DailyQuestionCount < MinDailyQuestions || u.DailyQuestionCount > MaxDailyQuestions {
		errs = append(errs, NewOutOfRangeError("daily_questions", u.DailyQuestionCount, MinDailyQuestions, MaxDailyQuestions))
	}
	if u.Frequency.Kind == FrequencyWeekdays && len(u.Frequency.Weekdays) == 0 {
		errs = append(errs, NewInvalidFormatError("frequency", u.Frequency.String()))
	}
	return errs
}
