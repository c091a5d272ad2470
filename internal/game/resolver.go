package game

import (
	"fmt"
	"strconv"
	"strings"
)

// WildAssignment records a value given to a wild card.
type WildAssignment struct {
	Seat  Seat
	Index int
	Value float64
}

// ParseWildInput validates a player's typed wild value. Only positive
// integers are accepted.
func ParseWildInput(input string) (float64, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidWildInput, input)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d is not positive", ErrInvalidWildInput, n)
	}
	return float64(n), nil
}

// DealerWildValue picks the dealer's value for one wild card given the
// running total of the dealer's other visible cards. It aims for exactly
// Threshold, but a wild is never worth less than 1: a dealer within 1 of
// Threshold, or already past it, gets 1 and busts.
func DealerWildValue(currentTotal float64) float64 {
	needed := Threshold - currentTotal
	if needed <= totalEpsilon || IsBust(currentTotal+needed) {
		return 1
	}
	if IsBust(currentTotal + 1) {
		return 1
	}
	return needed
}

// AutoAssignDealerWilds resolves every visible unresolved wild card in h in
// hand order. Each assignment is added to the running total before the next
// one is chosen.
func AutoAssignDealerWilds(h *Hand) []WildAssignment {
	var pending []int
	current := 0.0
	for i, c := range h.cards {
		if c.FaceDown {
			continue
		}
		if c.IsWild() && !c.Value.IsResolved() {
			pending = append(pending, i)
			continue
		}
		if v, ok := c.Value.Get(); ok {
			current += v
		}
	}

	assigned := make([]WildAssignment, 0, len(pending))
	for _, i := range pending {
		v := DealerWildValue(current)
		h.AssignWild(i, v)
		assigned = append(assigned, WildAssignment{Seat: h.seat, Index: i, Value: v})
		current += v
	}
	return assigned
}

// AssignPlayerWild gives value to the first visible unresolved wild card in
// h. It returns false when there is none.
func AssignPlayerWild(h *Hand, value float64) (WildAssignment, bool) {
	i := h.FirstPendingWild()
	if i < 0 {
		return WildAssignment{}, false
	}
	h.AssignWild(i, value)
	return WildAssignment{Seat: h.seat, Index: i, Value: value}, true
}
