package model

import "time"

// DayLayout is the storage format of Todo.Date.
const DayLayout = "2006-01-02"

// DayOf returns the calendar day of t in loc, formatted as YYYY-MM-DD.
// A nil location means time.Local.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// ValidDay reports whether s is a well-formed YYYY-MM-DD day string.
func ValidDay(s string) bool {
	_, err := time.Parse(DayLayout, s)
	return err == nil
}
