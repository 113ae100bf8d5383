package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the browser's bindings.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	FirstPage  key.Binding
	LastPage   key.Binding
	Toggle     key.Binding
	ToggleAll  key.Binding
	Clear      key.Binding
	Search     key.Binding
	Filter     key.Binding
	Sort       key.Binding
	PageSizeUp key.Binding
	PageSizeDn key.Binding
	Columns    key.Binding
	Delete     key.Binding
	Reload     key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage:   key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),
		NextPage:   key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
		FirstPage:  key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
		LastPage:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		ToggleAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Clear:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear selection")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		Sort:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "sort column")),
		PageSizeUp: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "bigger pages")),
		PageSizeDn: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller pages")),
		Columns:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "columns")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.PrevPage, k.NextPage, k.Toggle, k.ToggleAll, k.Search,
		k.Filter, k.Sort, k.Columns, k.Delete, k.Quit,
	}
}
