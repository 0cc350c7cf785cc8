// Package conversation provides tiered truncation of conversation history
// for oversized requests.
//
// Callers routinely replay very long histories (10k+ messages have been
// observed). Forwarding them verbatim blows provider payload limits and
// latency budgets, so the truncator bounds the history by message count
// while preserving the two regions that matter most: the opening messages
// (persona and setting context) and the most recent turns (the active
// topic). The dropped region is always a contiguous middle slice; relative
// order is never changed.
//
// Truncation is count-based, not token-based. That is a deliberate
// trade-off: it is cheap, deterministic, and good enough to keep payloads
// bounded.
//
// # Usage
//
//	tr := conversation.NewTruncator(conversation.DefaultTiers())
//	bounded := tr.Truncate(history)
//
// Histories at or below the selected tier's keep count are returned
// unchanged.
package conversation
