// Package session reconciles the active session with the account registry.
//
// # Storage Layout
//
// The [Engine] owns two values in an [store.IdentityStore]:
//   - the session slot ([store.SessionKey]) holding at most one [models.Session]
//   - the registry ([store.RegistryKey]) holding every non-distinguished [models.Account], in registration order
//
// The distinguished identity ([models.Identity]) lives in configuration only. It is never looked up in,
// or written to, the registry; [Engine.CommitUser] also strips it from the registry whenever it rewrites it.
//
// # Reconciliation
//
// [Engine.LoadCurrentUser] treats the registry as authoritative for alias, avatar, role and stats and merges
// them over the session slot. When the merge changes the role, the slot is rewritten so the next load is a no-op.
// Only the distinguished identity holds the superadmin role; registry entries and orphaned session slots
// claiming it are rejected.
// [Engine.CommitUser] is the write-through path: the slot first, then the matching registry entry.
//
// # Errors
//
// Reads fail soft: unreadable or malformed values are logged and treated as absent. Writes log and return
// errors wrapping [shared.ErrStorageUnavailable]. Validation and authentication failures wrap
// [shared.ErrValidationFailed], [shared.ErrNameReserved], [shared.ErrNameTaken] or [shared.ErrInvalidCredentials].
//
// # Events
//
// [EventBook] is the event catalogue ([store.EventsKey]); at most one event is active at a time.
// [RegistrationBook] keeps per-event attendee lists ([store.RegistrationsKey]). Deleting an account removes it
// from every event and deleting an event removes its attendee list. Joining requires a catalogue event.
package session
