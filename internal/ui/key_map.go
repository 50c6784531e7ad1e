package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for prompts.
type keyMap struct {
	submit key.Binding
	yes    key.Binding
	no     key.Binding
	quit   key.Binding
}

func newKeyMap(confirm bool) keyMap {
	k := keyMap{
		submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		no:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
		quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel")),
	}
	if confirm {
		k.submit.SetHelp("enter", "continue")
	}
	k.yes.SetEnabled(confirm)
	k.no.SetEnabled(confirm)
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.yes, k.no, k.submit, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.yes, k.no},
		{k.submit, k.quit},
	}
}
