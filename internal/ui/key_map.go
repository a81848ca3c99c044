package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the presenter.
//
// Navigation keys are resolved by nav.KeyIntent; the bindings here drive matching for the remaining commands and
// the help footer.
type keyMap struct {
	next       key.Binding
	prev       key.Binding
	jump       key.Binding
	ends       key.Binding
	fullscreen key.Binding
	export     key.Binding
	help       key.Binding
	quit       key.Binding
	yes        key.Binding
	no         key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:       key.NewBinding(key.WithKeys("right", " ", "l", "pgdown"), key.WithHelp("→/space", "next")),
		prev:       key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "previous")),
		jump:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"), key.WithHelp("1-9/0", "go to slide")),
		ends:       key.NewBinding(key.WithKeys("home", "end"), key.WithHelp("home/end", "first/last")),
		fullscreen: key.NewBinding(key.WithKeys("f", "F"), key.WithHelp("f", "fullscreen")),
		export:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "export")),
		help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		yes:        key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		no:         key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.prev, k.export, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.jump, k.ends},
		{k.fullscreen, k.export},
		{k.help, k.quit},
	}
}
