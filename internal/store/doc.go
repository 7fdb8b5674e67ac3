// Package store provides the key/value persistence behind the session engine.
//
// [IdentityStore] is the whole contract: Get, Set and Remove of opaque byte values by key. A missing key is
// reported as [shared.ErrKeyNotFound]; every other failure wraps [shared.ErrStorageUnavailable].
//
// Implementations:
//   - [MemoryStore] : process-local map, used by tests and the "memory" driver
//   - [SQLiteStore] : kv_entries table managed by the embedded migrations in the shared package
//   - [RedisStore] : prefixed string keys on a Redis server
//
// [Open] selects an implementation from [shared.StorageConfig].
package store
