// Package server exposes the session engine over a small local JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Session API
//
// [SessionAPI] implements [Handler] and maps requests onto [session.Engine] operations:
//
//	GET  /me                → current user (null when logged out)
//	POST /register          → {"id", "password"}
//	POST /login             → {"id", "password"}
//	POST /logout
//	POST /profile           → {"alias"} and/or {"avatar"}
//	GET  /accounts          → all accounts (admin role required)
//	GET  /events            → event catalogue
//	POST /events            → {"title", "date", "time", "description", "banner"} (admin role required)
//	POST /events/update     → {"id", "title", "date", "time", "description", "banner"} (admin role required)
//	POST /events/delete     → {"event"} (admin role required)
//	POST /events/start      → {"event"} (admin role required)
//	POST /events/cancel     → stops the active event (admin role required)
//	POST /events/join       → {"event"}
//	POST /events/leave      → {"event"}
//	GET  /events/attendees  → ?event=<id>
//
// The engine assumes a single caller, so [Serialize] runs one request at a time.
// Errors are reported as {"error": "..."} with a status derived from the sentinel in [shared].
package server
