package habit

import (
	"slices"
	"time"
)

// DayLayout is the calendar day format used for completion dates.
const DayLayout = "2006-01-02"

// Habit is a single tracked habit.
type Habit struct {
	// ID is the decimal creation time in Unix milliseconds. Never reassigned.
	ID string `json:"id"`

	// Title is the label exactly as the user typed it.
	Title string `json:"title"`

	// CompletedDates holds the YYYY-MM-DD days the habit was done.
	// Membership only; no duplicates.
	CompletedDates []string `json:"completedDates"`
}

// DoneOn reports whether day is in the habit's completed-day set.
func (h Habit) DoneOn(day string) bool {
	return slices.Contains(h.CompletedDates, day)
}

// Clone returns a deep copy of h. A nil day set becomes empty.
func (h Habit) Clone() Habit {
	days := make([]string, len(h.CompletedDates))
	copy(days, h.CompletedDates)
	h.CompletedDates = days
	return h
}

// toggled returns a copy of h with day added or removed.
func (h Habit) toggled(day string) Habit {
	out := h.Clone()
	if i := slices.Index(out.CompletedDates, day); i >= 0 {
		out.CompletedDates = slices.Delete(out.CompletedDates, i, i+1)
		return out
	}
	out.CompletedDates = append(out.CompletedDates, day)
	return out
}

// Collection is an ordered list of habits. Insertion order is display order.
type Collection []Habit

// Clone returns a deep copy of c. The result is never nil.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, h := range c {
		out[i] = h.Clone()
	}
	return out
}

// Index returns the position of the habit with the given id, or -1.
func (c Collection) Index(id string) int {
	for i, h := range c {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// Day formats t as a calendar day in t's own location.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay checks that s is a valid YYYY-MM-DD calendar day and returns it.
func ParseDay(s string) (string, error) {
	if _, err := time.Parse(DayLayout, s); err != nil {
		return "", &ValidationError{Field: "day", Err: ErrInvalidDay}
	}
	return s, nil
}
