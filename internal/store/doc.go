// Package store provides the key-value backends habit state is persisted to.
//
// This package is internal to habitboard. Every backend stores opaque byte
// documents under string keys; the habit collection is written as a single
// document under a single fixed key, so backends only need whole-value Get
// and Set.
//
// The main components are:
//
//   - [KV]: Interface implemented by every backend
//   - [MemoryStore]: In-process map, used for tests and ephemeral runs
//   - [FileStore]: One JSON file per key in a directory
//   - [SQLiteStore]: Pure-Go SQLite table via modernc.org/sqlite
//   - [RedisStore]: String keys in Redis via go-redis
//   - [PostgresStore]: Table in PostgreSQL via pgx
//
// [Open] selects a backend from a [Config].
package store
