// Package textutil normalizes speaker-note text for display.
//
// Note text is NFC-normalized, whitespace runs are collapsed, and previews are
// truncated on rune boundaries so CLI tables stay one line per slot.
package textutil
