package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	tracker "github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
)

// chromeHeight is the space taken by the header, status line and help.
const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.habitsModel.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	switch m.state {
	case constants.StateAddHabit:
		return m.updateAddHabit(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg), nil
	}

	if handled, cmd := m.handleHabitMessage(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.habitsModel.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = constants.StateHabits
		h, err := m.habitForm.Habit()
		if err == nil {
			h, err = m.tracker.Create(h)
		}
		if err != nil {
			m.setError(fmt.Errorf("failed to add habit: %w", err))
			return m, cmd
		}
		m.setStatus(fmt.Sprintf("Added %s (%s)", h.Name, h.FormatFrequency()))
		m.refresh()
	case huh.StateAborted:
		m.state = constants.StateHabits
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) Model {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m
	}
	switch {
	case key.Matches(k, m.keys.Confirm):
		if err := m.store.DeleteHabit(m.habitToDelete.ID); err != nil {
			m.setError(fmt.Errorf("failed to delete habit: %w", err))
		} else {
			m.setStatus(fmt.Sprintf("Deleted %s (press 'r' on it to restore)", m.habitToDelete.Name))
			m.refresh()
		}
	case key.Matches(k, m.keys.Cancel):
	default:
		return m
	}
	m.habitToDelete = habits.DeleteHabitMsg{}
	m.state = constants.StateHabits
	return m
}

// handleHabitMessage applies the actions emitted by the habit list.
func (m *Model) handleHabitMessage(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		m.habitForm = newHabitFormModel()
		m.form = NewHabitForm(m.habitForm)
		m.state = constants.StateAddHabit
		return true, m.form.Init()

	case habits.ToggleHabitMsg:
		ch, err := m.tracker.Toggle(msg.ID, "")
		m.reportChange(ch, err, toggleVerb(ch))

	case habits.LogHabitMsg:
		ch, err := m.tracker.Log(tracker.LogRequest{HabitID: msg.ID, Count: 1})
		m.reportChange(ch, err, "Logged")

	case habits.UndoHabitMsg:
		ch, err := m.tracker.Undo(msg.ID, "")
		if errors.Is(err, tracker.ErrNothingToUndo) {
			m.setStatus("Nothing to undo today")
			return true, nil
		}
		m.reportChange(ch, err, "Undid last record for")

	case habits.ArchiveHabitMsg:
		if msg.Unarchive {
			if err := m.store.UnarchiveHabit(msg.ID); err != nil {
				m.setError(fmt.Errorf("failed to unarchive habit: %w", err))
				return true, nil
			}
			m.refreshStreak(msg.ID)
			m.setStatus("Habit unarchived")
		} else {
			if err := m.store.ArchiveHabit(msg.ID); err != nil {
				m.setError(fmt.Errorf("failed to archive habit: %w", err))
				return true, nil
			}
			m.setStatus("Habit archived")
		}
		m.refresh()

	case habits.DeleteHabitMsg:
		m.habitToDelete = msg
		m.state = constants.StateConfirmDelete

	case habits.RestoreHabitMsg:
		if _, err := m.store.GetHabitByName(msg.Name); err == nil {
			m.setError(fmt.Errorf("an active habit named %q already exists", msg.Name))
			return true, nil
		}
		if err := m.store.RestoreHabit(msg.ID); err != nil {
			m.setError(fmt.Errorf("failed to restore habit: %w", err))
			return true, nil
		}
		m.refreshStreak(msg.ID)
		m.setStatus(fmt.Sprintf("Restored %s", msg.Name))
		m.refresh()

	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) refreshStreak(habitID string) {
	if _, err := m.tracker.RefreshStreak(habitID); err != nil {
		m.setError(err)
	}
}

func (m *Model) reportChange(ch tracker.Change, err error, verb string) {
	if err != nil {
		m.setError(err)
		return
	}
	row := tracker.TodayRow{Habit: ch.Habit, Scheduled: true, Status: ch.Status, Streak: ch.Streak}
	m.setStatus(fmt.Sprintf("%s %s · %s · %s", verb, ch.Habit.Name, habits.Progress(row), habits.Badge(ch.Habit, ch.Streak)))
	m.refresh()
}

func toggleVerb(ch tracker.Change) string {
	switch {
	case ch.Habit.IsSlipTracking() && ch.Status.IsComplete:
		return "Recorded slip for"
	case ch.Habit.IsSlipTracking():
		return "Cleared slip for"
	case ch.Status.IsComplete:
		return "Marked"
	default:
		return "Unmarked"
	}
}
