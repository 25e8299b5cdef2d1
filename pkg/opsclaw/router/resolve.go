package router

import (
	"regexp"
	"strings"
	"time"
)

// timePatterns are applied in definition order; matches are collected per
// pattern, so the Times slice is ordered by pattern, not by position in the
// text. That ordering is relied on by the planner ("first resolved time").
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:at\s+)?(\d{1,2}(?::\d{2})?\s*(?:am|pm))\b`),
	regexp.MustCompile(`(?i)\b(tomorrow|today|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\b(next\s+(?:week|monday|tuesday|wednesday|thursday|friday))\b`),
	regexp.MustCompile(`(?i)\b(in\s+\d+\s+(?:hours?|minutes?|days?))\b`),
	regexp.MustCompile(`\b(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\b`),
	regexp.MustCompile(`(?i)\b(end\s+of\s+(?:day|week))\b`),
	regexp.MustCompile(`(?i)\b(morning|afternoon|evening)\b`),
}

var personPatterns = []*regexp.Regexp{
	regexp.MustCompile(`@(\w+)`),
	regexp.MustCompile(`(?i)\b(?:with|to|for|assign(?:ed)?\s+to)\s+(?:the\s+)?(\w+(?:-\w+)?(?:\s+team)?)\b`),
}

// priorityBuckets are checked in order; the first bucket with any keyword
// present wins.
var priorityBuckets = []struct {
	level    string
	keywords []string
}{
	{"High", []string{"urgent", "critical", "emergency", "asap", "immediately", "high"}},
	{"Medium", []string{"soon", "when possible", "medium", "moderate"}},
	{"Low", []string{"eventually", "low", "whenever", "no rush"}},
}

var weekdayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// ResolveContext extracts time expressions, person references and priority
// from the text, and resolves relative dates against the reference clock.
func ResolveContext(text string, now time.Time) Context {
	resolved := Context{
		Priority:      "Medium",
		ResolvedDates: map[string]string{},
	}

	for _, re := range timePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			resolved.Times = append(resolved.Times, m[1])
		}
	}

	lower := strings.ToLower(text)

	if strings.Contains(lower, "tomorrow") {
		resolved.ResolvedDates["tomorrow"] = now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	if strings.Contains(lower, "today") {
		resolved.ResolvedDates["today"] = now.Format("2006-01-02")
	}
	if strings.Contains(lower, "next week") {
		// Next Monday relative to the reference date.
		resolved.ResolvedDates["next week"] = now.AddDate(0, 0, 7-mondayBased(now)).Format("2006-01-02")
	}

	for i, day := range weekdayNames {
		if !strings.Contains(lower, day) {
			continue
		}
		ahead := (i - mondayBased(now) + 7) % 7
		if ahead == 0 {
			// A bare weekday naming today means next week's occurrence,
			// never today.
			ahead = 7
		}
		resolved.ResolvedDates[day] = now.AddDate(0, 0, ahead).Format("2006-01-02")
	}

	for _, re := range personPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			resolved.People = append(resolved.People, m[1])
		}
	}

	for _, bucket := range priorityBuckets {
		if containsAny(lower, bucket.keywords) {
			resolved.Priority = bucket.level
			break
		}
	}

	return resolved
}

// mondayBased converts Go's Sunday-based weekday to Monday=0..Sunday=6.
func mondayBased(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
