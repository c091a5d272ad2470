package game

// Total sums the resolved values of the counted cards in h. A card counts
// when it is face up or revealAll is set. Unresolved wild cards contribute
// nothing, so the result is a partial total for display and the dealer
// heuristic only.
func Total(h *Hand, revealAll bool) float64 {
	total := 0.0
	for _, c := range h.cards {
		if c.FaceDown && !revealAll {
			continue
		}
		if v, ok := c.Value.Get(); ok {
			total += v
		}
	}
	return total
}

// RequiresWildInput reports whether h holds a visible wild card that has no
// value yet.
func RequiresWildInput(h *Hand) bool {
	return h.FirstPendingWild() >= 0
}

// SettledTotal is Total for bust and comparison decisions. Every counted
// card must be resolved; an unresolved counted card is an invariant
// violation.
func SettledTotal(h *Hand, revealAll bool) float64 {
	for i, c := range h.cards {
		if c.FaceDown && !revealAll {
			continue
		}
		if !c.Value.IsResolved() {
			violation("SettledTotal", "%s card %d (%s) is unresolved", h.seat, i, c)
		}
	}
	return Total(h, revealAll)
}
