package cli

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

type Context struct {
	Store   storage.Provider
	Tracker *habits.Tracker

	Out io.Writer
	In  io.Reader
}

// NewContext wires a tracker to store and writes to the process's stdio.
func NewContext(store storage.Provider) *Context {
	return &Context{
		Store:   store,
		Tracker: habits.New(store),
		Out:     os.Stdout,
		In:      os.Stdin,
	}
}

// Printf writes to the context's output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

// Print writes to the context's output.
func (c *Context) Print(args ...any) {
	fmt.Fprint(c.out(), args...)
}

// Println writes a line to the context's output.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Input returns the reader used for confirmations.
func (c *Context) Input() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// Confirm asks a yes/no question on the context's input. Anything but y or yes declines.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(c.Input()).ReadString('\n')
	if err != nil && response == "" {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// IsSQLite reports whether the store is backed by a local SQLite file.
func (c *Context) IsSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FindHabit resolves a habit by name, falling back to its ID.
// Deleted habits are only matched when includeDeleted is set.
func (c *Context) FindHabit(nameOrID string, includeDeleted bool) (models.Habit, error) {
	if !includeDeleted {
		h, err := c.Store.GetHabitByName(nameOrID)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, err
		}
		h, err = c.Store.GetHabit(nameOrID)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, err
		}
		return models.Habit{}, fmt.Errorf("%w: %q", habits.ErrHabitNotFound, nameOrID)
	}

	all, err := c.Store.GetAllHabits(true, true)
	if err != nil {
		return models.Habit{}, err
	}
	// Prefer the most recently deleted habit when several share a name.
	var match *models.Habit
	for i := range all {
		h := &all[i]
		if h.Name != nameOrID && h.ID != nameOrID {
			continue
		}
		if match == nil || deletedAfter(h, match) {
			match = h
		}
	}
	if match == nil {
		return models.Habit{}, fmt.Errorf("%w: %q", habits.ErrHabitNotFound, nameOrID)
	}
	return *match, nil
}

func deletedAfter(a, b *models.Habit) bool {
	switch {
	case a.DeletedAt == nil:
		return false
	case b.DeletedAt == nil:
		return true
	default:
		return a.DeletedAt.After(*b.DeletedAt)
	}
}

var weekdayNames = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tues": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thur": 4, "thurs": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

// ParseWeekdays parses a comma-separated list of weekdays into sorted,
// de-duplicated numbers 1 (Monday) through 7 (Sunday). Names and numbers mix freely.
func ParseWeekdays(s string) ([]int, error) {
	seen := make(map[int]bool)
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		d, ok := weekdayNames[part]
		if !ok {
			n, err := strconv.Atoi(part)
			if err != nil || n < 1 || n > 7 {
				return nil, fmt.Errorf("invalid weekday: %s (use mon..sun or 1..7)", part)
			}
			d = n
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no weekdays given")
	}
	sort.Ints(days)
	return days, nil
}
