package models

import (
	"testing"
	"time"
)

func TestHabit_Validate(t *testing.T) {
	base := func() Habit {
		return Habit{
			ID:            "habit-1",
			Name:          "Read",
			FrequencyType: FrequencyDaily,
			TargetCount:   1,
			HabitType:     HabitTypeBuild,
			TrackingMode:  TrackingManual,
			CreatedAt:     time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name    string
		mutate  func(h *Habit)
		wantErr bool
	}{
		{
			name:    "valid daily habit",
			mutate:  func(h *Habit) {},
			wantErr: false,
		},
		{
			name: "valid weekly habit",
			mutate: func(h *Habit) {
				h.FrequencyType = FrequencyWeekly
				h.FrequencyValue = 3
			},
			wantErr: false,
		},
		{
			name: "weekly without frequency value",
			mutate: func(h *Habit) {
				h.FrequencyType = FrequencyWeekly
			},
			wantErr: true,
		},
		{
			name: "specific days without days",
			mutate: func(h *Habit) {
				h.FrequencyType = FrequencySpecificDays
			},
			wantErr: true,
		},
		{
			name: "specific day out of range",
			mutate: func(h *Habit) {
				h.FrequencyType = FrequencySpecificDays
				h.SpecificDays = []int{1, 8}
			},
			wantErr: true,
		},
		{
			name: "empty name",
			mutate: func(h *Habit) {
				h.Name = ""
			},
			wantErr: true,
		},
		{
			name: "zero target",
			mutate: func(h *Habit) {
				h.TargetCount = 0
			},
			wantErr: true,
		},
		{
			name: "unknown frequency",
			mutate: func(h *Habit) {
				h.FrequencyType = "monthly"
			},
			wantErr: true,
		},
		{
			name: "auto-complete on build habit",
			mutate: func(h *Habit) {
				h.TrackingMode = TrackingAutoComplete
			},
			wantErr: true,
		},
		{
			name: "auto-complete on avoid habit",
			mutate: func(h *Habit) {
				h.HabitType = HabitTypeAvoid
				h.TrackingMode = TrackingAutoComplete
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := base()
			tt.mutate(&h)
			err := h.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Habit.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHabit_ApplyDefaults(t *testing.T) {
	h := Habit{FrequencyType: FrequencyWeekly}
	h.ApplyDefaults()

	if h.HabitType != HabitTypeBuild {
		t.Errorf("HabitType = %q, want %q", h.HabitType, HabitTypeBuild)
	}
	if h.TrackingMode != TrackingManual {
		t.Errorf("TrackingMode = %q, want %q", h.TrackingMode, TrackingManual)
	}
	if h.TargetCount != 1 {
		t.Errorf("TargetCount = %d, want 1", h.TargetCount)
	}
	if h.FrequencyValue != 1 {
		t.Errorf("FrequencyValue = %d, want 1", h.FrequencyValue)
	}
}

func TestHabit_IsSlipTracking(t *testing.T) {
	tests := []struct {
		name  string
		habit Habit
		want  bool
	}{
		{"build manual", Habit{HabitType: HabitTypeBuild, TrackingMode: TrackingManual}, false},
		{"avoid manual", Habit{HabitType: HabitTypeAvoid, TrackingMode: TrackingManual}, false},
		{"avoid auto-complete", Habit{HabitType: HabitTypeAvoid, TrackingMode: TrackingAutoComplete}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.habit.IsSlipTracking(); got != tt.want {
				t.Errorf("Habit.IsSlipTracking() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekdayNumberRoundTrip(t *testing.T) {
	for n := 1; n <= 7; n++ {
		if got := WeekdayNumber(ISOWeekday(n)); got != n {
			t.Errorf("WeekdayNumber(ISOWeekday(%d)) = %d", n, got)
		}
	}
	if ISOWeekday(7) != time.Sunday {
		t.Errorf("ISOWeekday(7) = %v, want Sunday", ISOWeekday(7))
	}
}

func TestHabit_FormatFrequency(t *testing.T) {
	h := Habit{FrequencyType: FrequencySpecificDays, SpecificDays: []int{2, 4}}
	if got := h.FormatFrequency(); got != "on Tue,Thu" {
		t.Errorf("FormatFrequency() = %q, want %q", got, "on Tue,Thu")
	}
}

func TestDecodeDays(t *testing.T) {
	days, err := DecodeDays(EncodeDays([]int{1, 3, 7}))
	if err != nil {
		t.Fatalf("DecodeDays() error = %v", err)
	}
	if len(days) != 3 || days[0] != 1 || days[1] != 3 || days[2] != 7 {
		t.Errorf("DecodeDays() = %v, want [1 3 7]", days)
	}

	if days, err := DecodeDays(""); err != nil || days != nil {
		t.Errorf("DecodeDays(\"\") = %v, %v; want nil, nil", days, err)
	}

	if _, err := DecodeDays("1,x"); err == nil {
		t.Error("DecodeDays(\"1,x\") expected error")
	}
}
