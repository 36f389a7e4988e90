// Package preflight provides readiness checks for the binaries and
// filesystem paths slidevox depends on.
//
// These checks run in two contexts:
//   - The batch runner calls RunAll before processing decks. If a check
//     fails, the run stops before any output is written.
//   - The CLI "slidevox check" command prints every result, including the
//     encoder capability report.
package preflight
