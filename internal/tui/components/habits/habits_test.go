package habits

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	tracker "github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
)

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func habit(id, name string) models.Habit {
	return models.Habit{ID: id, Name: name, FrequencyType: models.FrequencyDaily, TargetCount: 1,
		HabitType: models.HabitTypeBuild, TrackingMode: models.TrackingManual}
}

func TestItemText(t *testing.T) {
	now := time.Now()
	active := habit("h1", "Read")
	row := tracker.TodayRow{Habit: active, Scheduled: true,
		Status: streak.Status{Count: 1, Target: 1, IsComplete: true},
		Streak: streak.Result{CurrentStreak: 4, BestStreak: 9}}

	archived := habit("h2", "Walk")
	archived.ArchivedAt = &now
	deleted := habit("h3", "Run")
	deleted.DeletedAt = &now

	tests := []struct {
		name      string
		item      Item
		wantTitle string
		wantDesc  string
	}{
		{"done today", Item{Habit: active, Row: row}, "✓ Read", "daily · 1/1 today · 🔥 4d (best 9d)"},
		{"archived", Item{Habit: archived}, "[ARCHIVED] Walk", "archived, 'x' to unarchive"},
		{"deleted", Item{Habit: deleted}, "[DELETED] Run", "can restore with 'r'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Title(); got != tt.wantTitle {
				t.Errorf("Title() = %q, want %q", got, tt.wantTitle)
			}
			if got := tt.item.Description(); got != tt.wantDesc {
				t.Errorf("Description() = %q, want %q", got, tt.wantDesc)
			}
		})
	}
}

func TestGlyph(t *testing.T) {
	slip := habit("s", "Sugar")
	slip.HabitType, slip.TrackingMode = models.HabitTypeAvoid, models.TrackingAutoComplete
	daily := habit("d", "Water")
	daily.TargetCount = 3

	tests := []struct {
		name string
		row  tracker.TodayRow
		want string
	}{
		{"not scheduled", tracker.TodayRow{Habit: daily}, "–"},
		{"slip recorded", tracker.TodayRow{Habit: slip, Scheduled: true, Status: streak.Status{Count: 1, Target: 1, IsComplete: true}}, "✗"},
		{"clean day", tracker.TodayRow{Habit: slip, Scheduled: true, Status: streak.Status{Target: 1}}, "✓"},
		{"partial", tracker.TodayRow{Habit: daily, Scheduled: true, Status: streak.Status{Count: 1, Target: 3}}, "◐"},
		{"open", tracker.TodayRow{Habit: daily, Scheduled: true, Status: streak.Status{Target: 3}}, "○"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Glyph(tt.row); got != tt.want {
				t.Errorf("Glyph() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeysEmitActions(t *testing.T) {
	now := time.Now()
	active := habit("h1", "Read")
	deleted := habit("h2", "Run")
	deleted.DeletedAt = &now

	agenda := tracker.Agenda{Day: "2026-10-19", Rows: []tracker.TodayRow{{Habit: active, Scheduled: true}}}

	tests := []struct {
		name     string
		selected int
		key      string
		want     tea.Msg
	}{
		{"add", 0, "a", AddHabitMsg{}},
		{"toggle", 0, " ", ToggleHabitMsg{ID: "h1"}},
		{"log", 0, "+", LogHabitMsg{ID: "h1"}},
		{"undo", 0, "u", UndoHabitMsg{ID: "h1"}},
		{"archive", 0, "x", ArchiveHabitMsg{ID: "h1"}},
		{"delete", 0, "d", DeleteHabitMsg{ID: "h1", Name: "Read"}},
		{"restore active is a no-op", 0, "r", nil},
		{"restore deleted", 1, "r", RestoreHabitMsg{ID: "h2", Name: "Run"}},
		{"toggle deleted is a no-op", 1, " ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(80, 20)
			m.SetItems(agenda, []models.Habit{deleted})
			m.list.Select(tt.selected)

			_, cmd := m.Update(keyMsg(tt.key))
			var got tea.Msg
			if cmd != nil {
				got = cmd()
			}
			if tt.want == nil {
				switch got.(type) {
				case AddHabitMsg, ToggleHabitMsg, LogHabitMsg, UndoHabitMsg, ArchiveHabitMsg, DeleteHabitMsg, RestoreHabitMsg:
					t.Errorf("expected no action, got %#v", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSetItemsKeepsSelection(t *testing.T) {
	a, b := habit("a", "A"), habit("b", "B")
	agenda := tracker.Agenda{Rows: []tracker.TodayRow{{Habit: a}, {Habit: b}}}

	m := New(80, 20)
	m.SetItems(agenda, nil)
	m.list.Select(1)

	reordered := tracker.Agenda{Rows: []tracker.TodayRow{{Habit: b}, {Habit: a}}}
	m.SetItems(reordered, nil)
	if got := m.SelectedID(); got != "b" {
		t.Errorf("SelectedID() = %q, want %q", got, "b")
	}
}
