package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/piblackjack/internal/deck"
)

func TestDealerWildValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current float64
		want    float64
	}{
		{"empty hand reaches threshold", 0, Threshold},
		{"eighteen needs about four", 18, Threshold - 18},
		{"twenty needs under two", 20, Threshold - 20},
		{"exactly one below threshold", Threshold - 1, 1},
		{"twenty one assigns one", 21, 1},
		{"just below threshold assigns one", Threshold - 0.5, 1},
		{"at threshold assigns one", Threshold, 1},
		{"already bust assigns one", 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, DealerWildValue(tt.current), 1e-9)
		})
	}
}

func TestDealerWildValueReachesThresholdWithoutBusting(t *testing.T) {
	t.Parallel()

	v := DealerWildValue(18)
	assert.InDelta(t, 3.99, v, 0.01)
	assert.False(t, IsBust(18+v), "landing exactly on the threshold is not a bust")

	for current := 0.0; current <= Threshold-1; current += 0.25 {
		v := DealerWildValue(current)
		assert.Greater(t, v, 0.0)
		assert.False(t, IsBust(current+v), "current %.2f assigned %.4f", current, v)
	}
}

func TestDealerWildValueIsDeterministic(t *testing.T) {
	t.Parallel()

	for range 5 {
		a := handOf(SeatDealer, cards(deck.Six, deck.King, deck.Wild)...)
		b := handOf(SeatDealer, cards(deck.Six, deck.King, deck.Wild)...)
		AutoAssignDealerWilds(a)
		AutoAssignDealerWilds(b)
		assert.Equal(t, a.Card(2).Value, b.Card(2).Value)
	}
}

func TestAutoAssignDealerWilds(t *testing.T) {
	t.Parallel()

	t.Run("two wilds in hand order", func(t *testing.T) {
		t.Parallel()
		h := handOf(SeatDealer, cards(deck.Five, deck.Wild, deck.Wild)...)

		got := AutoAssignDealerWilds(h)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Index)
		assert.InDelta(t, Threshold-5, got[0].Value, 1e-9)
		assert.Equal(t, 2, got[1].Index)
		assert.InDelta(t, 1.0, got[1].Value, 1e-9, "second wild sees the first one's value")
		assert.InDelta(t, Threshold+1, SettledTotal(h, true), 1e-9)
	})

	t.Run("face down wild left alone", func(t *testing.T) {
		t.Parallel()
		hidden := deck.NewWild()
		hidden.FaceDown = true
		h := handOf(SeatDealer, deck.NewCard(deck.Clubs, deck.Ten), hidden)

		assert.Empty(t, AutoAssignDealerWilds(h))
		assert.False(t, h.Card(1).Value.IsResolved())
	})

	t.Run("resolved wild counts toward running total", func(t *testing.T) {
		t.Parallel()
		h := handOf(SeatDealer, cards(deck.Wild, deck.Four, deck.Wild)...)
		h.AssignWild(0, 10)

		got := AutoAssignDealerWilds(h)
		require.Len(t, got, 1)
		assert.InDelta(t, Threshold-14, got[0].Value, 1e-9)
	})

	t.Run("within one of threshold busts the dealer", func(t *testing.T) {
		t.Parallel()
		h := handOf(SeatDealer, cards(deck.Ten, deck.Ace, deck.Wild)...)

		got := AutoAssignDealerWilds(h)
		require.Len(t, got, 1)
		assert.InDelta(t, 1.0, got[0].Value, 1e-9)

		total := SettledTotal(h, true)
		assert.InDelta(t, 22.0, total, 1e-9)
		assert.True(t, IsBust(total))

		st := Settle(20, total, 10)
		assert.Equal(t, OutcomeDealerBust, st.Outcome)
		assert.Equal(t, 20, st.Payout)
	})
}

func TestParseWildInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"7", 7, false},
		{" 12 ", 12, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"3.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseWildInput(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidWildInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssignPlayerWild(t *testing.T) {
	t.Parallel()

	h := handOf(SeatPlayer, cards(deck.Three, deck.Wild, deck.Wild)...)

	a, ok := AssignPlayerWild(h, 4)
	require.True(t, ok)
	assert.Equal(t, WildAssignment{Seat: SeatPlayer, Index: 1, Value: 4}, a)

	a, ok = AssignPlayerWild(h, 2)
	require.True(t, ok)
	assert.Equal(t, 2, a.Index)

	_, ok = AssignPlayerWild(h, 9)
	assert.False(t, ok)
	assert.InDelta(t, 9.0, SettledTotal(h, false), 1e-9)
}

func TestAssignWildTwicePanics(t *testing.T) {
	t.Parallel()

	h := handOf(SeatPlayer, cards(deck.Wild, deck.Two)...)
	h.AssignWild(0, 3)
	requireViolation(t, func() { h.AssignWild(0, 4) })
	requireViolation(t, func() { h.AssignWild(1, 4) })
	requireViolation(t, func() { h.AssignWild(5, 4) })
}
