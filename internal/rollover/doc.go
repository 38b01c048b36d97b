// Package rollover watches for the calendar day changing.
//
// This package is internal to habitboard. The dashboard marks which habits
// are done "today", so connected clients need a nudge when the local day
// rolls over even though nothing in the collection changed.
//
// The main component is [Watcher], which ticks at a fixed interval, compares
// the current day against the last one it saw, and emits the new day on
// [Watcher.Days] when it differs.
package rollover
