package conversation

import (
	"fmt"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
)

// Tier describes the truncation policy for one history-length bucket.
type Tier struct {
	// Threshold is the exclusive upper bound on history length for this
	// tier. A history matches the first tier whose threshold exceeds its
	// length. Zero means unbounded; the final tier must be unbounded so
	// every length matches something.
	Threshold int `yaml:"threshold"`

	// Keep is the total number of messages retained.
	Keep int `yaml:"keep"`

	// KeepFirst is how many leading messages are preserved verbatim.
	// The remaining Keep-KeepFirst slots go to the most recent messages.
	KeepFirst int `yaml:"keep_first"`
}

// DefaultTiers returns the default tier table.
func DefaultTiers() []Tier {
	return []Tier{
		{Threshold: 100, Keep: 60, KeepFirst: 6},
		{Threshold: 300, Keep: 120, KeepFirst: 10},
		{Threshold: 1000, Keep: 200, KeepFirst: 12},
		{Threshold: 0, Keep: 300, KeepFirst: 15},
	}
}

// ValidateTiers checks a tier table for internal consistency: ascending
// thresholds, a final unbounded tier, and keep_first <= keep everywhere.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("tier table must not be empty")
	}

	prev := 0
	for i, t := range tiers {
		if t.Keep <= 0 {
			return fmt.Errorf("tier %d: keep must be positive, got %d", i, t.Keep)
		}
		if t.KeepFirst < 0 || t.KeepFirst > t.Keep {
			return fmt.Errorf("tier %d: keep_first %d out of range [0, %d]", i, t.KeepFirst, t.Keep)
		}

		last := i == len(tiers)-1
		if last {
			if t.Threshold != 0 {
				return fmt.Errorf("tier %d: final tier must be unbounded (threshold 0)", i)
			}
			continue
		}
		if t.Threshold <= prev {
			return fmt.Errorf("tier %d: thresholds must be strictly ascending, got %d after %d", i, t.Threshold, prev)
		}
		prev = t.Threshold
	}

	return nil
}

// Truncator reduces an ordered message history to a bounded subset.
// It is pure and safe for concurrent use.
type Truncator struct {
	tiers []Tier
}

// NewTruncator creates a truncator for the given tier table. The table is
// assumed to have passed ValidateTiers.
func NewTruncator(tiers []Tier) *Truncator {
	return &Truncator{tiers: tiers}
}

// Truncate bounds the history according to the tier matching its length.
// Small histories are returned untouched: the input slice itself, never a
// copy, so callers can rely on the identity fast path. Oversized histories
// yield a fresh slice holding the first keep_first messages followed by the
// last keep-keep_first messages.
func (t *Truncator) Truncate(history []providers.Message) []providers.Message {
	tier := t.selectTier(len(history))

	if len(history) <= tier.Keep {
		return history
	}

	head := history[:tier.KeepFirst]
	tail := history[len(history)-(tier.Keep-tier.KeepFirst):]

	out := make([]providers.Message, 0, tier.Keep)
	out = append(out, head...)
	out = append(out, tail...)
	return out
}

// Dropped reports how many messages Truncate would remove for a history of
// the given length. Used for logging and metrics.
func (t *Truncator) Dropped(length int) int {
	tier := t.selectTier(length)
	if length <= tier.Keep {
		return 0
	}
	return length - tier.Keep
}

// selectTier returns the first tier whose threshold strictly exceeds the
// length. The final tier is unbounded and always matches.
func (t *Truncator) selectTier(length int) Tier {
	for _, tier := range t.tiers {
		if tier.Threshold == 0 || length < tier.Threshold {
			return tier
		}
	}
	// Unreachable with a validated table; fall back to the last tier.
	return t.tiers[len(t.tiers)-1]
}
