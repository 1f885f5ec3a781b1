// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const months = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`

// datePatterns are the date shapes searched for in report text, in order.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(?i)(\d{1,2}\s+` + months + `\s+\d{2,4})`),
	regexp.MustCompile(`(?i)(` + months + `\s+\d{1,2},?\s+\d{2,4})`),
	regexp.MustCompile(`(\d{1,2}-\d{1,2}-\d{2,4})`),
}

// dateLayouts are tried against each candidate before the permissive parser.
// Day-first layouts come before month-first ones.
var dateLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"1-2-2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

var filenameDate = regexp.MustCompile(`(\d{4}[-_]\d{2}[-_]\d{2})`)

// legacyLayouts are the ISO-8601 shapes accepted in legacy report_date fields.
var legacyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// findDate scans text for the first date-like substring that parses.
func findDate(text string) (time.Time, bool) {
	for _, re := range datePatterns {
		for _, match := range re.FindAllString(text, -1) {
			if t, ok := parseCandidate(strings.TrimSpace(match)); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// parseCandidate tries the fixed layouts, then the permissive parser.
func parseCandidate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// dateFromFilename extracts a YYYY-MM-DD or YYYY_MM_DD token from name.
func dateFromFilename(name string) (time.Time, bool) {
	m := filenameDate.FindString(name)
	if m == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", strings.ReplaceAll(m, "_", "-"), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseISODate parses a legacy report_date value.
func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range legacyLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
