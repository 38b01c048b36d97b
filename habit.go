package habitboard

import (
	"io"

	"github.com/jpalmerr/habitboard/internal/habit"
)

// Re-exported habit types so SDK users never import internal packages.
type (
	// Habit is a single tracked habit.
	Habit = habit.Habit

	// Collection is the ordered habit list, in display order.
	Collection = habit.Collection

	// HabitStore owns the in-memory collection and its durable mirror.
	HabitStore = habit.Store

	// Repository loads and saves the whole collection as one document.
	Repository = habit.Repository

	// ValidationError reports rejected user input; its message is user-facing.
	ValidationError = habit.ValidationError
)

// ClosableRepository is a [Repository] holding a storage connection that
// must be closed after use.
type ClosableRepository interface {
	Repository
	io.Closer
}

// StorageKey is the fixed key the collection is stored under.
const StorageKey = habit.StorageKey

var (
	ErrEmptyTitle   = habit.ErrEmptyTitle
	ErrInvalidDay   = habit.ErrInvalidDay
	ErrCorruptState = habit.ErrCorruptState
)

// Day formats t as a YYYY-MM-DD calendar day in t's location.
var Day = habit.Day

// ParseDay validates a YYYY-MM-DD day.
var ParseDay = habit.ParseDay

// NewMemoryRepository returns a [Repository] that lives only in memory.
func NewMemoryRepository() Repository {
	return habit.NewMemoryRepository()
}
