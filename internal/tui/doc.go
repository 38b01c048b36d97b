// Package tui is the terminal version of the habit dashboard.
//
// It renders the same single screen as the web page: an input for new
// habit titles and the habit list with today's completion mark. Store calls
// run as bubbletea commands so the update loop never blocks on storage.
package tui
