// Package habit holds the habit collection, its JSON document format, and the
// store that keeps it mirrored to durable storage.
//
// The collection is persisted as a single JSON array under [StorageKey]:
//
//	[{"id":"1704067200000","title":"Read","completedDates":["2024-01-01"]}]
//
// There is no per-habit write; every change rewrites the whole document.
// The root habitboard package re-exports the types in this package.
package habit
