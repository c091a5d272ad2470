package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	BetUp     key.Binding
	BetDown   key.Binding
	BetUp10   key.Binding
	BetDown10 key.Binding
	Confirm   key.Binding
	AllIn     key.Binding
	Hit       key.Binding
	Stand     key.Binding
	WildDigit key.Binding
	Backspace key.Binding
	Submit    key.Binding
	Advance   key.Binding
	Restart   key.Binding
	Abandon   key.Binding
	Yes       key.Binding
	No        key.Binding
	ScrollUp  key.Binding
	ScrollDn  key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	BetUp:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "bet +1")),
	BetDown:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "bet -1")),
	BetUp10:   key.NewBinding(key.WithKeys("right", "+"), key.WithHelp("→/+", "bet +10")),
	BetDown10: key.NewBinding(key.WithKeys("left", "-"), key.WithHelp("←/-", "bet -10")),
	Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm bet")),
	AllIn:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all in")),
	Hit:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hit")),
	Stand:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stand")),
	WildDigit: key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "PI value")),
	Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete")),
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "set PI")),
	Advance:   key.NewBinding(key.WithKeys("n", " ", "enter"), key.WithHelp("n/space", "next round")),
	Restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new game")),
	Abandon:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "restart game")),
	Yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm restart")),
	No:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "keep playing")),
	ScrollUp:  key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll log")),
	ScrollDn:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll log")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}
