package utils

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the calendar date format used for appointment days.
const DateLayout = "2006-01-02"

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// dateRules accept only zero-padded real calendar dates.
var dateRules = []validation.Rule{
	validation.Required.Error("is required"),
	validation.Match(datePattern).Error("must be in YYYY-MM-DD format"),
	validation.Date(DateLayout).Error("must be a valid calendar date"),
}

var clockRules = []validation.Rule{
	validation.Required.Error("is required"),
	validation.Match(clockPattern).Error("must be in HH:MM 24-hour format"),
}

// ValidateDate checks a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	return AsValidation(validation.Errors{
		"date": validation.Validate(date, dateRules...),
	}.Filter())
}

// ValidateClock checks an HH:MM 24-hour clock time.
func ValidateClock(clock string) error {
	return AsValidation(validation.Errors{
		"time": validation.Validate(clock, clockRules...),
	}.Filter())
}

// ValidateRange checks a date and a non-empty half-open clock interval.
func ValidateRange(date, start, end string) error {
	err := validation.Errors{
		"date":      validation.Validate(date, dateRules...),
		"startTime": validation.Validate(start, clockRules...),
		"endTime":   validation.Validate(end, clockRules...),
	}.Filter()
	if err != nil {
		return AsValidation(err)
	}
	// Fixed-width HH:MM strings order the same way as the times they encode.
	if start >= end {
		return Validationf("startTime must be before endTime")
	}
	return nil
}

// Overlaps reports whether [s1,e1) and [s2,e2) share any instant.
// Touching intervals do not overlap.
func Overlaps(s1, e1, s2, e2 string) bool {
	return !(e1 <= s2 || s1 >= e2)
}

// AddDays moves a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", Validationf("date: must be a valid calendar date")
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// Today returns the UTC calendar date of now.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
