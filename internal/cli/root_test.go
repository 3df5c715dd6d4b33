package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"mon,wed,fri", []int{1, 3, 5}, false},
		{"Sunday, saturday", []int{6, 7}, false},
		{"7,1,1", []int{1, 7}, false},
		{"tue,4", []int{2, 4}, false},
		{"0", nil, true},
		{"8", nil, true},
		{"funday", nil, true},
		{" , ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekdays(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekdays(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseWeekdays(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindHabit(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	ctx := NewContext(store)
	ctx.Out = &bytes.Buffer{}

	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	h := models.Habit{ID: "h1", Name: "Read", FrequencyType: models.FrequencyDaily, TargetCount: 1,
		HabitType: models.HabitTypeBuild, TrackingMode: models.TrackingManual, CreatedAt: created}
	if err := store.AddHabit(h); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	for _, key := range []string{"Read", "h1"} {
		got, err := ctx.FindHabit(key, false)
		if err != nil {
			t.Fatalf("FindHabit(%q) failed: %v", key, err)
		}
		if got.ID != "h1" {
			t.Errorf("FindHabit(%q) = %s, want h1", key, got.ID)
		}
	}

	if _, err := ctx.FindHabit("Write", false); !errors.Is(err, habits.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound, got %v", err)
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("failed to delete habit: %v", err)
	}
	if _, err := ctx.FindHabit("Read", false); !errors.Is(err, habits.ErrHabitNotFound) {
		t.Errorf("deleted habit should not resolve, got %v", err)
	}
	got, err := ctx.FindHabit("Read", true)
	if err != nil {
		t.Fatalf("FindHabit with deleted failed: %v", err)
	}
	if got.DeletedAt == nil {
		t.Error("expected the deleted habit")
	}
}
