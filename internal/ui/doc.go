// Package ui renders sessions, accounts and command feedback for the terminal with [lipgloss] styles.
//
// A [Palette] holds the named styles; [Palette.Card] draws the current user's profile card and
// [Palette.Accounts] the administrator's account list. [Palette.Events] lists the event catalogue. Plain output (no colors) is available through
// [Plain] for piping and tests.
package ui
