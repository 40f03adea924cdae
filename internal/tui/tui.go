// Package tui is the interactive terminal UI. Every mutation goes
// through the syncer, so the UI inherits the same offline behavior as
// the rest of the client.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todosync/internal/domain/todo"
	"todosync/internal/sync"
)

const refreshInterval = 2 * time.Second

// listEntry adapts a todo item to bubbles/list.Item.
type listEntry struct {
	item todo.Item
}

func (e listEntry) Title() string       { return e.item.Text }
func (e listEntry) Description() string { return "" }
func (e listEntry) FilterValue() string { return e.item.Text }

// entryDelegate renders each todo on a single line.
type entryDelegate struct{}

func (d entryDelegate) Height() int                               { return 1 }
func (d entryDelegate) Spacing() int                              { return 0 }
func (d entryDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d entryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(listEntry)
	if !ok {
		return
	}

	box := mutedStyle.Render(boxUnchecked)
	text := entry.item.Text
	if entry.item.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

type tickMsg struct{}
type refreshMsg struct{}
type opErrMsg struct{ err error }

// Model is the Bubble Tea model for the todo list.
type Model struct {
	ctx    context.Context
	syncer *sync.Syncer

	list  list.Model
	input textinput.Model

	adding bool
	addErr string
	status string

	width  int
	height int
}

// New builds the model with the syncer's current items.
func New(ctx context.Context, syncer *sync.Syncer) Model {
	items := syncer.Items()
	entries := make([]list.Item, 0, len(items))
	for _, item := range items {
		entries = append(entries, listEntry{item: item})
	}

	l := list.New(entries, entryDelegate{}, 0, 0)
	l.Title = titleStyle.Render("Todos")
	l.SetShowHelp(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "

	bindings := func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
			key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
			key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
			key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear done")),
			key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "New todo..."
	input.CharLimit = todo.MaxTextLength

	return Model{
		ctx:    ctx,
		syncer: syncer,
		list:   l,
		input:  input,
	}
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, syncer *sync.Syncer) error {
	p := tea.NewProgram(New(ctx, syncer), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		// Periodic redraw so monitor transitions show without input.
		m.refresh()
		return m, tick()
	case refreshMsg:
		m.status = ""
		m.refresh()
		return m, nil
	case opErrMsg:
		m.status = msg.err.Error()
		m.refresh()
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch keyMsg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "a":
			m.adding = true
			m.addErr = ""
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		case " ":
			if entry, ok := m.selected(); ok {
				return m, m.op(func() error {
					_, err := m.syncer.ToggleComplete(m.ctx, entry.item.ID)
					return err
				})
			}
			return m, nil
		case "d":
			if entry, ok := m.selected(); ok {
				return m, m.op(func() error {
					return m.syncer.Remove(m.ctx, entry.item.ID)
				})
			}
			return m, nil
		case "C":
			return m, m.op(func() error {
				_, err := m.syncer.RemoveCompleted(m.ctx)
				return err
			})
		case "r":
			return m, m.op(func() error {
				m.syncer.Load(m.ctx)
				return nil
			})
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				m.addErr = "text cannot be empty"
				return m, nil
			}
			m.adding = false
			m.addErr = ""
			m.input.Blur()
			m.input.SetValue("")
			return m, m.op(func() error {
				_, err := m.syncer.Add(m.ctx, text)
				return err
			})
		case "esc":
			m.adding = false
			m.addErr = ""
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	m.list.SetSize(m.listWidth(), m.listHeight())

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")

	if m.adding {
		label := "Add todo (enter to save, esc to cancel)"
		if m.addErr != "" {
			label += "  " + errorStyle.Render(m.addErr)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(m.footer())
	return b.String()
}

func (m Model) footer() string {
	stats := m.syncer.Stats()
	line := fmt.Sprintf("%s %d  %s %d  %s %d",
		successStyle.Render("✔"), stats.Completed,
		pendingStyle.Render("•"), stats.Pending,
		accentStyle.Render("Total"), stats.Total,
	)
	if !m.syncer.Online() {
		line += "  " + offlineBadge.Render("offline")
	}

	if m.status != "" {
		line += "\n" + errorStyle.Render(m.status)
	} else if advisory := m.syncer.LastError(); advisory != "" {
		line += "\n" + pendingStyle.Render(advisory)
	}
	return line
}

// op wraps a syncer call in a command; the result lands back in Update
// as a refresh or an error message.
func (m Model) op(f func() error) tea.Cmd {
	return func() tea.Msg {
		if err := f(); err != nil {
			return opErrMsg{err: err}
		}
		return refreshMsg{}
	}
}

func (m *Model) refresh() {
	items := m.syncer.Items()
	entries := make([]list.Item, 0, len(items))
	for _, item := range items {
		entries = append(entries, listEntry{item: item})
	}
	m.list.SetItems(entries)
}

func (m Model) selected() (listEntry, bool) {
	item := m.list.SelectedItem()
	if item == nil {
		return listEntry{}, false
	}
	entry, ok := item.(listEntry)
	return entry, ok
}

func (m Model) listWidth() int {
	if m.width == 0 {
		return 78
	}
	return m.width - 2
}

func (m Model) listHeight() int {
	h := m.height - 4
	if m.adding {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	return h
}
