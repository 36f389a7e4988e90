// Package replacement decides, per narration slot, whether and how to
// overwrite the slide's media payload, and performs the rewrite.
//
// Every slot ends in exactly one terminal state: Unmatched when no recording
// was paired with it, Written when its payload was replaced (transcoded or
// passed through), or Skipped with a reason code. Slot-level failures never
// stop the document; Apply returns an error only for document or run level
// failures and for cancellation between slots.
package replacement
