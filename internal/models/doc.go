// Package models defines the identity records exchanged between the session engine and its store.
//
// Record types:
//   - [Account] : the canonical, registry-persisted user record, credential included
//   - [Session] : the materialized "currently logged in" view, credential excluded, plus ephemeral fields
//   - [Stats] : opaque usage aggregates carried by both
//   - [Identity] : the distinguished super-administrator, supplied by configuration and never stored in the registry
//
// Field rules (id shape, alias length and charset, credential length, avatar references) are enforced with
// go-playground/validator using the custom tags registered in validate.go. Every failure wraps
// [shared.ErrValidationFailed] with a human-readable reason.
package models
