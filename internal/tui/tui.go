// Package tui is the interactive note list: a bubbletea program that renders
// the controller's mirror and turns key presses into note intents.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/notish/internal/model"
	"github.com/idilsaglam/notish/internal/notes"
	"github.com/idilsaglam/notish/internal/ui"
)

const emptyText = "No notes found!"

var actionLabels = []string{"Edit", "Delete"}

// listItem adapts a Note to bubbles/list.Item
type listItem struct {
	note model.Note
}

func (i listItem) FilterValue() string { return i.note.Text }

// Single-line rows: bullet, text, short creation date.
type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()

	date := it.note.Timestamp.Local().Format("Jan 2")
	width := m.Width() - len(date) - 6
	text := ui.Truncate(it.note.Text, width)

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(t.SymCursor)
		text = t.Title.Render(text)
	}
	fmt.Fprintf(w, "%s%s %s  %s", prefix, t.Accent.Render(t.SymBullet), text, t.Muted.Render(date))
}

type keyMap struct {
	add, edit, del, actions key.Binding
	confirm, cancel         key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		add:     key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "new note")),
		edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		del:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		actions: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "options")),
		confirm: key.NewBinding(key.WithKeys("enter")),
		cancel:  key.NewBinding(key.WithKeys("esc")),
	}
}

// Model is the bubbletea model and the controller's view.
type Model struct {
	ctx  context.Context
	ctrl *notes.Controller
	keys keyMap

	list  list.Model
	input textinput.Model

	empty    bool
	inputErr string // validation message shown in the note dialog
	status   string // last store failure

	// Edit/Delete chooser for the selected note
	choosing bool
	choice   int
	chosen   int

	width, height int
	pending       []tea.Cmd
}

var _ notes.View = (*Model)(nil)

// New builds the model and attaches it to ctrl. Call ctrl.Load afterwards
// to fill the list.
func New(ctx context.Context, ctrl *notes.Controller) *Model {
	t := ui.Current()
	keys := newKeyMap()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = "Notes"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("note", "notes")
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{keys.add, keys.edit, keys.del} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{keys.add, keys.edit, keys.del, keys.actions} }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 1000

	m := &Model{
		ctx:   ctx,
		ctrl:  ctrl,
		keys:  keys,
		list:  l,
		input: ti,
		empty: true,
	}
	ctrl.Attach(m)
	return m
}

// Run loads the notes and blocks until the user quits.
func Run(ctx context.Context, ctrl *notes.Controller) error {
	m := New(ctx, ctrl)
	if err := ctrl.Load(ctx); err != nil {
		return err
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// ---- notes.View ----

func (m *Model) RenderList(ns []model.Note) {
	items := make([]list.Item, 0, len(ns))
	for _, n := range ns {
		items = append(items, listItem{note: n})
	}
	if cmd := m.list.SetItems(items); cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

func (m *Model) ShowEmptyState(empty bool)      { m.empty = empty }
func (m *Model) ShowValidationError(msg string) { m.inputErr = msg }
func (m *Model) ShowError(err error)            { m.status = err.Error() }

// ---- tea.Model ----

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if _, open := m.ctrl.Dialog(); open {
			return m, m.updateDialog(msg)
		}
		if m.choosing {
			return m, m.updateChooser(msg)
		}
		if m.list.SettingFilter() {
			break
		}
		if cmd, handled := m.updateBrowsing(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(append(m.flush(), cmd)...)
}

func (m *Model) updateBrowsing(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.add):
		m.status = ""
		m.openDialog(m.ctrl.RequestCreate())
		return textinput.Blink, true
	case key.Matches(msg, m.keys.edit):
		return m.edit(m.selected()), true
	case key.Matches(msg, m.keys.del):
		m.remove(m.selected())
		return tea.Batch(m.flush()...), true
	case key.Matches(msg, m.keys.actions):
		if pos := m.selected(); pos >= 0 {
			m.choosing, m.choice, m.chosen = true, 0, pos
			m.resize()
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) updateDialog(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.confirm):
		m.status = ""
		_ = m.ctrl.ConfirmDialog(m.ctx, m.input.Value())
		if _, open := m.ctrl.Dialog(); !open {
			m.closeDialog()
		}
		return tea.Batch(m.flush()...)
	case key.Matches(msg, m.keys.cancel):
		m.ctrl.CancelDialog()
		m.closeDialog()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.inputErr = ""
	return cmd
}

func (m *Model) updateChooser(msg tea.KeyMsg) tea.Cmd {
	pick := -1
	switch msg.String() {
	case "up", "k":
		m.choice = (m.choice + len(actionLabels) - 1) % len(actionLabels)
	case "down", "j", "tab":
		m.choice = (m.choice + 1) % len(actionLabels)
	case "enter":
		pick = m.choice
	case "e", "1":
		pick = 0
	case "d", "2":
		pick = 1
	case "esc", "q":
		m.choosing = false
		m.resize()
	}
	if pick < 0 {
		return nil
	}

	m.choosing = false
	m.resize()
	if pick == 0 {
		return m.edit(m.chosen)
	}
	m.remove(m.chosen)
	return tea.Batch(m.flush()...)
}

func (m *Model) edit(pos int) tea.Cmd {
	if pos < 0 {
		return nil
	}
	s, err := m.ctrl.RequestEdit(pos)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = ""
	m.openDialog(s)
	return textinput.Blink
}

func (m *Model) remove(pos int) {
	if pos < 0 {
		return
	}
	m.status = ""
	_ = m.ctrl.RequestDelete(m.ctx, pos)
}

// selected maps the highlighted row, which may be filtered, to its mirror position.
func (m *Model) selected() int {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return -1
	}
	for i, n := range m.ctrl.Notes() {
		if n.ID == it.note.ID {
			return i
		}
	}
	return -1
}

func (m *Model) openDialog(s notes.Session) {
	m.inputErr = ""
	m.input.Placeholder = "New note..."
	m.input.SetValue("")
	if s.Mode == notes.ModeEdit {
		m.input.Placeholder = "Edit note..."
		m.input.SetValue(s.Note.Text)
		m.input.CursorEnd()
	}
	m.input.Focus()
	m.resize()
}

func (m *Model) closeDialog() {
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
	m.resize()
}

func (m *Model) flush() []tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return cmds
}

func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	reserved := 4 // panel border and padding
	if _, open := m.ctrl.Dialog(); open {
		reserved += 6
	}
	if m.choosing {
		reserved += len(actionLabels) + 3
	}
	if m.status != "" {
		reserved++
	}
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
	m.input.Width = m.width - 12
}

func (m *Model) View() string {
	t := ui.Current()

	var content string
	if m.empty {
		help := t.Help.Render(fmt.Sprintf("%s %s • q quit", m.keys.add.Help().Key, m.keys.add.Help().Desc))
		content = strings.Join([]string{t.Title.Render("Notes"), "", t.Muted.Render(emptyText), "", help}, "\n")
	} else {
		content = m.list.View()
	}

	if s, open := m.ctrl.Dialog(); open {
		content += "\n" + m.dialogView(s)
	}
	if m.choosing {
		content += "\n" + m.chooserView()
	}
	if m.status != "" {
		content += "\n" + t.Error.Render(t.SymFail+" "+m.status)
	}
	return ui.Box().Render(content)
}

func (m *Model) dialogView(s notes.Session) string {
	t := ui.Current()
	title, action := "New Note", "Save"
	if s.Mode == notes.ModeEdit {
		title, action = "Edit Note", "Update"
	}
	if m.inputErr != "" {
		title += ": " + t.Error.Render(m.inputErr)
	}
	hint := t.Help.Render(fmt.Sprintf("[enter] %s  [esc] Cancel", action))
	return ui.Box().Render(lipgloss.JoinVertical(lipgloss.Left, t.Title.Render(title), m.input.View(), hint))
}

func (m *Model) chooserView() string {
	t := ui.Current()
	lines := []string{t.Title.Render("Choose Option")}
	for i, label := range actionLabels {
		prefix := "  "
		if i == m.choice {
			prefix = t.Selected.Render(t.SymCursor)
		}
		lines = append(lines, prefix+label)
	}
	return ui.Box().Render(strings.Join(lines, "\n"))
}
