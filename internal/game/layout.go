package game

// Layout supplies the presentation coordinates that placements fly
// between. The engine never reads them back.
type Layout interface {
	DeckPosition() Point
	PlayerSlot(index, count int) Point
	DealerSlot(index int) Point
}

const (
	cardWidth     = 60
	dealerSpacing = 15
)

// TableLayout places cards on a Width x Height table with the deck in the
// top-left corner, the dealer row near the top and the player row centred
// near the bottom.
type TableLayout struct {
	Width  float64
	Height float64
}

// DefaultLayout returns a 1200x600 table
func DefaultLayout() TableLayout {
	return TableLayout{Width: 1200, Height: 600}
}

func (l TableLayout) DeckPosition() Point {
	return Point{X: 100, Y: 100}
}

// PlayerSlot returns the position of card index in a row of count cards.
// Spacing tightens as the row grows.
func (l TableLayout) PlayerSlot(index, count int) Point {
	spacing := 5.0
	switch {
	case count <= 5:
		spacing = 15
	case count <= 7:
		spacing = 10
	}
	n := float64(count)
	width := n*cardWidth + (n-1)*spacing
	startX := float64(int((l.Width - width) / 2))
	return Point{
		X: startX + float64(index)*(cardWidth+spacing),
		Y: l.Height - 200,
	}
}

// DealerSlot returns the position of the dealer's index-th card. The first
// two slots are fixed; later cards extend right of the hole card.
func (l TableLayout) DealerSlot(index int) Point {
	first := Point{X: l.Width/2 - 150, Y: 130}
	hole := Point{X: l.Width/2 - 70, Y: 130}
	switch index {
	case 0:
		return first
	case 1:
		return hole
	default:
		return Point{X: hole.X + float64(index-1)*(cardWidth+dealerSpacing), Y: hole.Y}
	}
}
