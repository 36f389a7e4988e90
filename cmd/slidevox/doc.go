// Package main hosts the slidevox CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the batch replacement run, read-only
// inspection of decks (slots, match), environment checks, the run history
// kept in the ledger, and configuration scaffolding. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on presenting results.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
