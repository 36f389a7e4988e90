// Package language resolves deck locales from file names and maps locale
// codes to canonical BCP 47 tags and display names.
//
// Deck names follow "<name>_<targetLocale>_<sourceLocale>_<suffix>.<ext>".
// The raw target run (for example "deDE") names the asset directory, while
// the canonical tag ("de-DE") is used for display and the run ledger.
package language
