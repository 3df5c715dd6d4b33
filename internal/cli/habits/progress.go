package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	tracker "github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
	"github.com/julianstephens/habitual/internal/utils"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	agenda, err := ctx.Tracker.Today()
	if err != nil {
		return err
	}

	if len(agenda.Rows) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	ctx.Printf("Habits for %s:\n\n", agenda.Day)
	for _, row := range agenda.Rows {
		ctx.Printf("%s %-24s %-16s %s\n", checkbox(row), row.Habit.Name, progress(row.Habit, row.Status), streakLabel(row.Habit, row.Streak))
	}

	done, scheduled := agenda.Done()
	ctx.Printf("\nDone: %d/%d\n", done, scheduled)
	return nil
}

func checkbox(row tracker.TodayRow) string {
	switch {
	case !row.Scheduled:
		return "[-]"
	case row.Habit.IsSlipTracking() && row.Status.IsComplete:
		return "[!]"
	case row.Habit.IsSlipTracking(), row.Status.IsComplete:
		return "[x]"
	default:
		return "[ ]"
	}
}

func progress(h models.Habit, s streak.Status) string {
	switch {
	case h.IsSlipTracking():
		if s.Count == 0 {
			return "clean"
		}
		return fmt.Sprintf("%d slip(s)", s.Count)
	case h.FrequencyType == models.FrequencyWeekly:
		return fmt.Sprintf("%d/%d this week", s.Count, s.Target)
	default:
		return fmt.Sprintf("%d/%d", s.Count, s.Target)
	}
}

func streakLabel(h models.Habit, r streak.Result) string {
	unit := "day"
	if streak.StrategyFor(h) == streak.StrategyWeekly {
		unit = "week"
	}
	return fmt.Sprintf("streak %d %s (best %d)", r.CurrentStreak, plural(unit, r.CurrentStreak), r.BestStreak)
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

type LogCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Day   string `help:"Day in YYYY-MM-DD format (default: today)."`
	Count int    `help:"Units to record." default:"1"`
	Note  string `help:"Optional note for this record."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}

	change, err := ctx.Tracker.Log(tracker.LogRequest{
		HabitID: h.ID,
		Day:     c.Day,
		Count:   c.Count,
		Note:    c.Note,
	})
	if err != nil {
		return err
	}

	verb := "Logged"
	if h.IsSlipTracking() {
		verb = "Logged a slip for"
	}
	ctx.Printf("%s %s on %s: %s\n", verb, h.Name, change.Day, progress(change.Habit, change.Status))
	ctx.Println(streakLabel(change.Habit, change.Streak))
	return nil
}

type UndoCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Day   string `help:"Day in YYYY-MM-DD format (default: today)."`
}

func (c *UndoCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}

	change, err := ctx.Tracker.Undo(h.ID, c.Day)
	if err != nil {
		return err
	}

	ctx.Printf("Removed last record for %s on %s: %s\n", h.Name, change.Day, progress(change.Habit, change.Status))
	ctx.Println(streakLabel(change.Habit, change.Streak))
	return nil
}

type ToggleCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Day   string `help:"Day in YYYY-MM-DD format (default: today)."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}

	change, err := ctx.Tracker.Toggle(h.ID, c.Day)
	if err != nil {
		return err
	}

	state := "Unmarked"
	if change.Status.IsComplete {
		state = "Marked"
	}
	ctx.Printf("%s %s for %s\n", state, h.Name, change.Day)
	ctx.Println(streakLabel(change.Habit, change.Streak))
	return nil
}

type StreakCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or ID (default: all active habits)."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	if c.Habit != "" {
		h, err := ctx.FindHabit(c.Habit, false)
		if err != nil {
			return err
		}
		result, err := ctx.Tracker.Streak(h.ID)
		if err != nil {
			return err
		}
		printStreak(ctx, h, result)
		return nil
	}

	agenda, err := ctx.Tracker.Today()
	if err != nil {
		return err
	}
	if len(agenda.Rows) == 0 {
		ctx.Println("No habits found.")
		return nil
	}
	for _, row := range agenda.Rows {
		printStreak(ctx, row.Habit, row.Streak)
	}
	return nil
}

func printStreak(ctx *cli.Context, h models.Habit, r streak.Result) {
	last := r.LastCompletionDate
	if last == "" {
		last = "never"
	}
	label := "last done"
	if h.IsSlipTracking() {
		label = "last slip"
	}
	ctx.Printf("%-24s %s, %s %s\n", h.Name, streakLabel(h, r), label, last)
}

type HeatmapCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Days  int    `help:"Days to show (default: the heatmap_days setting)."`
}

func (c *HeatmapCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}

	hm, err := ctx.Tracker.Heatmap(h.ID, c.Days)
	if err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ctx.Printf("%s, last %d days:\n\n", h.Name, len(hm.Cells))
	ctx.Print(renderHeatmap(hm, settings.WeekStartDay()))
	ctx.Printf("\n%s done  %s partial  %s missed\n", cellDone, cellPartial, cellMissed)
	return nil
}

const (
	cellDone    = "■"
	cellPartial = "▪"
	cellMissed  = "·"
	cellBlank   = " "
)

// renderHeatmap draws one line per week, oldest first, with the week's first day as label.
func renderHeatmap(hm tracker.Heatmap, weekStart time.Weekday) string {
	if len(hm.Cells) == 0 {
		return ""
	}

	var b strings.Builder
	first, err := utils.ParseDay(hm.Cells[0].Day)
	if err != nil {
		return ""
	}
	ws := streak.WeekStartOf(first, weekStart)

	// Leading blanks for days of the first week outside the window.
	lead := utils.DaysBetween(ws, first)
	row := make([]string, 0, 7)
	for i := 0; i < lead; i++ {
		row = append(row, cellBlank)
	}

	flush := func() {
		fmt.Fprintf(&b, "%s  %s\n", utils.FormatDay(ws), strings.Join(row, " "))
		ws = utils.AddDays(ws, 7)
		row = row[:0]
	}

	for _, cell := range hm.Cells {
		row = append(row, cellGlyph(hm.Habit, cell))
		if len(row) == 7 {
			flush()
		}
	}
	if len(row) > 0 {
		flush()
	}
	return b.String()
}

func cellGlyph(h models.Habit, cell tracker.HeatmapCell) string {
	switch {
	case !cell.Tracked:
		return cellBlank
	case cell.Complete:
		return cellDone
	case cell.Count > 0 && !h.IsSlipTracking():
		return cellPartial
	default:
		return cellMissed
	}
}
