package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	tracker "github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
)

// HabitFormModel backs the add-habit form. Numeric fields are strings so the
// form can validate them as they are typed.
type HabitFormModel struct {
	Name        string
	Description string
	Frequency   models.FrequencyType
	PerWeek     string
	Days        string
	Target      string
	Type        models.HabitType
	Mode        models.TrackingMode
}

type Model struct {
	store         storage.Provider
	tracker       *tracker.Tracker
	state         constants.SessionState
	keys          KeyMap
	help          help.Model
	habitsModel   habits.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	habitToDelete habits.DeleteHabitMsg
	agenda        tracker.Agenda
	status        string
	statusErr     bool
	quitting      bool
	width         int
	height        int
}

func NewModel(store storage.Provider, t *tracker.Tracker) Model {
	m := Model{
		store:       store,
		tracker:     t,
		state:       constants.StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(0, 0),
	}
	m.refresh()
	return m
}

// tickMsg refreshes the list so the view follows the calendar across midnight.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// refresh reloads today's agenda plus archived and deleted habits.
func (m *Model) refresh() {
	agenda, err := m.tracker.Today()
	if err != nil {
		m.setError(err)
		return
	}
	all, err := m.store.GetAllHabits(true, true)
	if err != nil {
		m.setError(err)
		return
	}
	var inactive []models.Habit
	for _, h := range all {
		if !h.IsActive() {
			inactive = append(inactive, h)
		}
	}
	m.agenda = agenda
	m.habitsModel.SetItems(agenda, inactive)
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}
