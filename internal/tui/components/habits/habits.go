package habits

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	tracker "github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type LogHabitMsg struct {
	ID string
}

type UndoHabitMsg struct {
	ID string
}

// ArchiveHabitMsg archives an active habit or unarchives an archived one.
type ArchiveHabitMsg struct {
	ID        string
	Unarchive bool
}

type DeleteHabitMsg struct {
	ID   string
	Name string
}

type RestoreHabitMsg struct {
	ID   string
	Name string
}

// Item is one list row. Row is only meaningful for active habits.
type Item struct {
	Habit models.Habit
	Row   tracker.TodayRow
}

func (i Item) deleted() bool  { return i.Habit.DeletedAt != nil }
func (i Item) archived() bool { return i.Habit.ArchivedAt != nil }
func (i Item) active() bool   { return !i.deleted() && !i.archived() }

func (i Item) Title() string {
	switch {
	case i.deleted():
		return "[DELETED] " + i.Habit.Name
	case i.archived():
		return "[ARCHIVED] " + i.Habit.Name
	}
	return Glyph(i.Row) + " " + i.Habit.Name
}

func (i Item) Description() string {
	switch {
	case i.deleted():
		return "can restore with 'r'"
	case i.archived():
		return "archived, 'x' to unarchive"
	}
	parts := []string{i.Habit.FormatFrequency(), Progress(i.Row)}
	if !i.Row.Scheduled {
		parts[1] = "not scheduled today"
	}
	parts = append(parts, Badge(i.Habit, i.Row.Streak))
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Habit.Name }

// Glyph marks a row's state for today.
func Glyph(row tracker.TodayRow) string {
	switch {
	case !row.Scheduled:
		return "–"
	case row.Habit.IsSlipTracking() && row.Status.IsComplete:
		return "✗"
	case row.Habit.IsSlipTracking(), row.Status.IsComplete:
		return "✓"
	case row.Status.Count > 0 && row.Habit.FrequencyType != models.FrequencyWeekly:
		return "◐"
	default:
		return "○"
	}
}

// Progress describes today's count against the target.
func Progress(row tracker.TodayRow) string {
	s := row.Status
	switch {
	case row.Habit.IsSlipTracking():
		if s.Count == 0 {
			return "clean today"
		}
		return fmt.Sprintf("%d slip(s) today", s.Count)
	case row.Habit.FrequencyType == models.FrequencyWeekly:
		return fmt.Sprintf("%d/%d this week", s.Count, s.Target)
	default:
		return fmt.Sprintf("%d/%d today", s.Count, s.Target)
	}
}

// Badge is the compact streak summary shown on each row.
func Badge(h models.Habit, r streak.Result) string {
	unit := "d"
	if streak.StrategyFor(h) == streak.StrategyWeekly {
		unit = "w"
	}
	return fmt.Sprintf("🔥 %d%s (best %d%s)", r.CurrentStreak, unit, r.BestStreak, unit)
}

type KeyMap struct {
	Add     key.Binding
	Toggle  key.Binding
	Log     key.Binding
	Undo    key.Binding
	Archive key.Binding
	Delete  key.Binding
	Restore key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		Log: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "log one"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "-"),
			key.WithHelp("u", "undo"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
	}
}

func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Log, k.Undo, k.Archive, k.Delete, k.Restore}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return Model{
		list: l,
		keys: DefaultKeyMap(),
	}
}

// SetItems replaces the rows: active habits first, then archived, then deleted.
// The selection stays on the same habit when it is still listed.
func (m *Model) SetItems(agenda tracker.Agenda, inactive []models.Habit) {
	selected := m.SelectedID()

	items := make([]list.Item, 0, len(agenda.Rows)+len(inactive))
	for _, row := range agenda.Rows {
		items = append(items, Item{Habit: row.Habit, Row: row})
	}
	for _, h := range inactive {
		if h.DeletedAt == nil {
			items = append(items, Item{Habit: h})
		}
	}
	for _, h := range inactive {
		if h.DeletedAt != nil {
			items = append(items, Item{Habit: h})
		}
	}
	m.list.SetItems(items)

	for i, it := range items {
		if it.(Item).Habit.ID == selected {
			m.list.Select(i)
			break
		}
	}
}

// SelectedID returns the ID of the highlighted habit, empty when the list is empty.
func (m Model) SelectedID() string {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Habit.ID
	}
	return ""
}

func (m Model) Keys() KeyMap { return m.keys }

// Filtering reports whether the user is typing a filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if cmd := m.action(msg); cmd != nil {
			return m, cmd
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) action(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Add) {
		return emit(AddHabitMsg{})
	}

	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return nil
	}
	id := i.Habit.ID

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if i.active() {
			return emit(ToggleHabitMsg{ID: id})
		}
	case key.Matches(msg, m.keys.Log):
		if i.active() {
			return emit(LogHabitMsg{ID: id})
		}
	case key.Matches(msg, m.keys.Undo):
		if i.active() {
			return emit(UndoHabitMsg{ID: id})
		}
	case key.Matches(msg, m.keys.Archive):
		if !i.deleted() {
			return emit(ArchiveHabitMsg{ID: id, Unarchive: i.archived()})
		}
	case key.Matches(msg, m.keys.Delete):
		if !i.deleted() {
			return emit(DeleteHabitMsg{ID: id, Name: i.Habit.Name})
		}
	case key.Matches(msg, m.keys.Restore):
		if i.deleted() {
			return emit(RestoreHabitMsg{ID: id, Name: i.Habit.Name})
		}
	}
	return nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
