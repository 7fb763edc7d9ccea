package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open          key.Binding
	Summarize     key.Binding
	Expand        key.Binding
	Show          key.Binding
	Delete        key.Binding
	Overlay       key.Binding
	Details       key.Binding
	Escape        key.Binding
	Prev          key.Binding
	Next          key.Binding
	ZoomIn        key.Binding
	ZoomOut       key.Binding
	Rotate        key.Binding
	Menu          key.Binding
	MenuSummarize key.Binding
	MenuShow      key.Binding
	MenuDelete    key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open:          key.NewBinding(key.WithKeys("o", "/"), key.WithHelp("o", "open")),
		Summarize:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "summarize")),
		Expand:        key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
		Show:          key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "show")),
		Delete:        key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Overlay:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "summary")),
		Details:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "details")),
		Escape:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Prev:          key.NewBinding(key.WithKeys("left", "up", "h", "pgup"), key.WithHelp("←", "prev page")),
		Next:          key.NewBinding(key.WithKeys("right", "down", "l", "pgdown"), key.WithHelp("→", "next page")),
		ZoomIn:        key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:       key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Rotate:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate")),
		Menu:          key.NewBinding(key.WithKeys("."), key.WithHelp(".", "menu")),
		MenuSummarize: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Summarize")),
		MenuShow:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Show")),
		MenuDelete:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Delete")),
		ScrollUp:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "scroll")),
		ScrollDown:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "scroll")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type keyHint struct {
	Key         string
	Description string
}

func hint(b key.Binding) keyHint {
	h := b.Help()
	return keyHint{Key: h.Key, Description: h.Desc}
}
