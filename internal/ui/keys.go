package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Back        key.Binding
	Select      key.Binding
	Delete      key.Binding
	Trash       key.Binding
	Sort        key.Binding
	Rescan      key.Binding
	Open        key.Binding
	Search      key.Binding
	SizeFilter  key.Binding
	ClearFilter key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("→/enter", "open folder"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h", "backspace"),
			key.WithHelp("←/h", "parent"),
		),
		Select: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "mark"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Trash: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trash/permanent"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "reveal"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		SizeFilter: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "min size"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapFrom applies overrides to the default bindings. Each override maps
// an action name such as "delete" or "sizeFilter" to a comma separated key
// list. Unknown actions and empty key lists are ignored.
func KeyMapFrom(overrides map[string]string) KeyMap {
	keys := DefaultKeyMap()
	actions := map[string]*key.Binding{
		"up":          &keys.Up,
		"down":        &keys.Down,
		"enter":       &keys.Enter,
		"back":        &keys.Back,
		"select":      &keys.Select,
		"delete":      &keys.Delete,
		"trash":       &keys.Trash,
		"sort":        &keys.Sort,
		"rescan":      &keys.Rescan,
		"open":        &keys.Open,
		"search":      &keys.Search,
		"sizefilter":  &keys.SizeFilter,
		"clearfilter": &keys.ClearFilter,
		"confirm":     &keys.Confirm,
		"cancel":      &keys.Cancel,
		"help":        &keys.Help,
		"quit":        &keys.Quit,
	}
	for action, value := range overrides {
		binding, ok := actions[strings.ToLower(strings.TrimSpace(action))]
		if !ok {
			continue
		}
		var bound []string
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				bound = append(bound, name)
			}
		}
		if len(bound) == 0 {
			continue
		}
		binding.SetKeys(bound...)
		binding.SetHelp(strings.Join(bound, "/"), binding.Help().Desc)
	}
	return keys
}

func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Enter, keys.Back, keys.Select, keys.Delete, keys.Sort, keys.Cancel, keys.Help, keys.Quit}
}

func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Up, keys.Down, keys.Enter, keys.Back},
		{keys.Select, keys.Delete, keys.Trash, keys.Open},
		{keys.Sort, keys.Search, keys.SizeFilter, keys.ClearFilter},
		{keys.Rescan, keys.Cancel, keys.Confirm, keys.Help, keys.Quit},
	}
}
