package orchestrator

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateRange is an inclusive span of calendar days.
type dateRange struct {
	start time.Time
	end   time.Time
	label string
}

var (
	isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	// "13th feb 2026", "13 february"
	dayMonthPattern = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?(?:,?\s*(\d{4}))?`)
	// "feb 13", "february 13th, 2026"
	monthDayPattern = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// parseDateReference extracts a date range from natural language. Explicit
// date tokens take priority over relative phrases; no recognizable
// reference means today.
func parseDateReference(message string, now time.Time) dateRange {
	msg := strings.ToLower(message)
	today := truncateToDay(now)

	if d, ok := parseExplicitDate(msg, now); ok {
		return dateRange{start: d, end: d, label: d.Format("Jan 02, 2006")}
	}

	switch {
	case strings.Contains(msg, "yesterday"):
		d := today.AddDate(0, 0, -1)
		return dateRange{start: d, end: d, label: "Yesterday"}
	case strings.Contains(msg, "last week"):
		return dateRange{
			start: today.AddDate(0, 0, -7),
			end:   today.AddDate(0, 0, -1),
			label: "Last 7 Days",
		}
	case strings.Contains(msg, "this week"):
		return dateRange{start: startOfWeek(today), end: today, label: "This Week"}
	case strings.Contains(msg, "last 3 days"), strings.Contains(msg, "past 3 days"):
		return dateRange{start: today.AddDate(0, 0, -3), end: today, label: "Last 3 Days"}
	}

	return dateRange{start: today, end: today, label: "Today"}
}

func parseExplicitDate(msg string, now time.Time) (time.Time, bool) {
	if m := isoDatePattern.FindStringSubmatch(msg); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return buildDate(year, time.Month(month), day, now)
	}

	if m := dayMonthPattern.FindStringSubmatch(msg); m != nil {
		day, _ := strconv.Atoi(m[1])
		year := yearOrCurrent(m[3], now)
		return buildDate(year, monthsByPrefix[m[2]], day, now)
	}

	if m := monthDayPattern.FindStringSubmatch(msg); m != nil {
		day, _ := strconv.Atoi(m[2])
		year := yearOrCurrent(m[3], now)
		return buildDate(year, monthsByPrefix[m[1]], day, now)
	}

	return time.Time{}, false
}

func buildDate(year int, month time.Month, day int, now time.Time) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	// Normalization moved the date, so the day was out of range for the
	// month.
	if d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func yearOrCurrent(s string, now time.Time) int {
	if s == "" {
		return now.Year()
	}
	year, _ := strconv.Atoi(s)
	return year
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfWeek(day time.Time) time.Time {
	weekday := int(day.Weekday())
	// Monday-based week
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
