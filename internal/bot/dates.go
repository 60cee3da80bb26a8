package bot

import (
	"errors"
	"time"
)

// dueDateLayout is the only accepted lexical form for due dates.
const dueDateLayout = "2006-01-02"

// timeNow returns the current time. Test override.
var timeNow = time.Now

// Due-date validation failures. Handlers re-prompt in place on either.
var (
	// ErrBadDate means the input is not a real YYYY-MM-DD calendar date
	// (wrong shape, or an impossible date like day 30 of February).
	ErrBadDate = errors.New("bot: invalid date")
	// ErrPastDate means the date is strictly before today.
	ErrPastDate = errors.New("bot: date is in the past")
)

// ParseDueDate validates a due-date string: exact YYYY-MM-DD form, a real
// calendar date, and not earlier than now truncated to midnight.
func ParseDueDate(input string, now time.Time) (time.Time, error) {
	date, err := time.Parse(dueDateLayout, input)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	// time.Parse normalizes some impossible dates instead of rejecting
	// them outright; the round-trip check catches any that slip through.
	if date.Format(dueDateLayout) != input {
		return time.Time{}, ErrBadDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return time.Time{}, ErrPastDate
	}
	return date, nil
}

// formatDue renders a nullable due date for messages. Urgent tasks carry
// no date and read "ASAP".
func formatDue(due *time.Time) string {
	if due == nil {
		return "ASAP"
	}
	return due.Format(dueDateLayout)
}
