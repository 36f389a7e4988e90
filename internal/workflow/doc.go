// Package workflow runs narration replacement over a batch of decks.
//
// The Runner resolves each deck's target locale from its file name, lists
// the recordings in the matching locale directory, pairs them with the deck's
// narration slots, and hands the result to the replacement engine. Writable
// work always happens on a copy placed in the output directory; the input
// deck is only ever opened read-only.
//
// Decks are processed in parallel by a bounded worker group. Failures are
// contained by scope: a slot failure never stops its deck, a deck failure
// never stops the batch, and only run-scoped failures (configuration errors,
// the abort codec policy) cancel the remaining decks. Every deck and slot
// outcome is recorded in the run ledger when it is enabled.
package workflow
