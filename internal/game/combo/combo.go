// Package combo implements escalating hit-chain resolution: the windowed hit
// counter that decides whether a strike continues a chain, and the pure
// resolver that turns a chain position into damage and knockback.
//
// The same resolver serves both free-roam combos and locked juggle exchanges;
// only the caller-side timing differs.
package combo

// Tier is the presentation tier of a combo hit, derived from the hit index.
type Tier int

const (
	TierSingle Tier = iota + 1
	TierDouble
	TierTriple
	TierRampage
)

// TierFor maps a 1-based hit index to its display tier. Indexes of four and
// above all map to TierRampage.
//
// Precondition: hitIndex >= 1.
func TierFor(hitIndex int) Tier {
	switch {
	case hitIndex <= 1:
		return TierSingle
	case hitIndex == 2:
		return TierDouble
	case hitIndex == 3:
		return TierTriple
	default:
		return TierRampage
	}
}

// String returns the display label for the tier.
func (t Tier) String() string {
	switch t {
	case TierSingle:
		return "hit"
	case TierDouble:
		return "double hit"
	case TierTriple:
		return "triple hit"
	case TierRampage:
		return "rampage"
	default:
		return "unknown"
	}
}
