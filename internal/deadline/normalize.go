// Package deadline converts free-text deadline phrases into absolute
// timestamps plus a human-readable display string.
package deadline

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// displayLayout renders "Tuesday, Jun 25, 2:00 PM PDT"-style strings.
const displayLayout = "Monday, Jan 2, 3:04 PM MST"

// Phrase patterns, kept in one table.
var (
	// leadingPreposition strips a single "by "/"at "/"on " token.
	leadingPreposition = regexp.MustCompile(`^(by|at|on)\s+`)

	// nextWeekdayPattern recognizes "next <weekday>" with full or
	// abbreviated day names. Handled specially because general-purpose
	// parsing is ambiguous about which week is meant.
	nextWeekdayPattern = regexp.MustCompile(
		`^next\s+(sunday|sun|monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thu|friday|fri|saturday|sat)\b`)

	// timeOfDayPattern finds "2pm", "2:30 pm" anywhere in the phrase.
	timeOfDayPattern = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// Normalizer resolves deadline phrases. Current time is always an explicit
// parameter so weekday math is deterministic under test.
type Normalizer struct {
	parser *when.Parser
	loc    *time.Location
	logger *slog.Logger
}

// NewNormalizer creates a normalizer that resolves dates in the given
// location. A nil location means time.Local.
func NewNormalizer(loc *time.Location, logger *slog.Logger) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	return &Normalizer{parser: parser, loc: loc, logger: logger}
}

// Normalize converts a raw deadline phrase into a resolution. A blank input
// or an unparseable phrase yields an empty resolution; an empty ISO is the
// sole failure signal.
func (n *Normalizer) Normalize(raw string, now time.Time) models.DeadlineResolution {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return models.DeadlineResolution{}
	}
	text = leadingPreposition.ReplaceAllString(text, "")
	now = now.In(n.loc)

	if m := nextWeekdayPattern.FindStringSubmatch(text); m != nil {
		return n.resolve(nextWeekdayTime(text, weekdays[m[1]], now, n.loc))
	}

	result, err := n.parser.Parse(text, now)
	if err != nil || result == nil {
		n.logger.Debug("deadline unparseable", "text", text)
		return models.DeadlineResolution{}
	}

	t := result.Time.In(n.loc)
	// Prefer future dates: a time-of-day phrase that landed earlier today
	// means the next occurrence.
	if t.Before(now) {
		if now.Sub(t) < 24*time.Hour {
			t = t.AddDate(0, 0, 1)
		} else {
			n.logger.Debug("deadline resolved to the past", "text", text, "resolved", t)
			return models.DeadlineResolution{}
		}
	}

	return n.resolve(t)
}

func (n *Normalizer) resolve(t time.Time) models.DeadlineResolution {
	return models.DeadlineResolution{
		ISO:     t.Format(time.RFC3339),
		Display: t.Format(displayLayout),
	}
}

// nextWeekdayTime computes the date of the next occurrence of target after
// now. A non-positive naive day difference (including "next monday" said on a
// Monday) advances a full week, so the result is never today.
func nextWeekdayTime(text string, target time.Weekday, now time.Time, loc *time.Location) time.Time {
	diff := int(target) - int(now.Weekday())
	if diff <= 0 {
		diff += 7
	}
	date := now.AddDate(0, 0, diff)

	hour, minute := 23, 59
	if m := timeOfDayPattern.FindStringSubmatch(text); m != nil {
		hour, minute = to24Hour(m[1], m[2], m[3])
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
}

// to24Hour converts a 12-hour clock reading to 24-hour values.
func to24Hour(hourStr, minuteStr, meridiem string) (int, int) {
	hour, _ := strconv.Atoi(hourStr)
	minute := 0
	if minuteStr != "" {
		minute, _ = strconv.Atoi(minuteStr)
	}
	if meridiem == "pm" && hour != 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	return hour, minute
}
