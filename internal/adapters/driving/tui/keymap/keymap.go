// Package keymap holds the TUI's key bindings.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is shared by every view. Enter is both Send and Select, and Esc
// always means Back.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Chat view.
	Send    key.Binding
	Compose key.Binding // refocus the input from the transcript
	Summary key.Binding
	Compare key.Binding
	Clear   key.Binding
}

func bind(hint, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(hint, desc))
}

// DefaultKeyMap returns the bindings the views are built with.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),

		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Select: bind("enter", "select", "enter"),

		Send:    bind("enter", "send", "enter"),
		Compose: bind("i", "type", "i", "tab"),
		Summary: bind("ctrl+s", "summary", "ctrl+s"),
		Compare: bind("ctrl+o", "compare", "ctrl+o"),
		Clear:   bind("ctrl+l", "clear", "ctrl+l"),
	}
}

// ShortHelp is the hint list outside the chat view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ChatHelp is the hint list inside the chat view.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.Summary, k.Compare, k.Clear, k.Back}
}

// Matches reports whether keyStr is one of binding's keys.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
