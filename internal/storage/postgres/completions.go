package postgres

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

const completionColumns = "id, habit_id, completion_date, count, note, created_at"

func scanCompletion(row rowScanner) (models.HabitCompletion, error) {
	var c models.HabitCompletion
	var createdAt string
	if err := row.Scan(&c.ID, &c.HabitID, &c.CompletionDate, &c.Count, &c.Note, &createdAt); err != nil {
		return models.HabitCompletion{}, err
	}
	t, err := time.Parse(timestampFormat, createdAt)
	if err != nil {
		return models.HabitCompletion{}, fmt.Errorf("failed to parse created_at for completion %s: %w", c.ID, err)
	}
	c.CreatedAt = t
	return c, nil
}

func (s *Store) queryCompletions(query string, args ...any) ([]models.HabitCompletion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completions := []models.HabitCompletion{}
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func (s *Store) AddHabitCompletion(c models.HabitCompletion) error {
	_, err := s.db.Exec(`
		INSERT INTO habit_completions (`+completionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.HabitID, c.CompletionDate, c.Count, c.Note, c.CreatedAt.UTC().Format(timestampFormat))
	return err
}

func (s *Store) GetHabitCompletions(habitID string) ([]models.HabitCompletion, error) {
	return s.queryCompletions(`
		SELECT `+completionColumns+` FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completion_date, created_at`, habitID)
}

func (s *Store) GetHabitCompletionsForDay(habitID, day string) ([]models.HabitCompletion, error) {
	return s.queryCompletions(`
		SELECT `+completionColumns+` FROM habit_completions
		WHERE habit_id = $1 AND completion_date = $2
		ORDER BY created_at`, habitID, day)
}

func (s *Store) GetCompletionsInRange(startDay, endDay string) ([]models.HabitCompletion, error) {
	return s.queryCompletions(`
		SELECT `+completionColumns+` FROM habit_completions
		WHERE completion_date >= $1 AND completion_date <= $2
		ORDER BY completion_date, created_at`, startDay, endDay)
}

func (s *Store) GetAllHabitCompletions() ([]models.HabitCompletion, error) {
	return s.queryCompletions(`
		SELECT ` + completionColumns + ` FROM habit_completions
		ORDER BY habit_id, completion_date, created_at`)
}

func (s *Store) DeleteHabitCompletion(id string) error {
	result, err := s.db.Exec("DELETE FROM habit_completions WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectOneRow(result, "completion %s: %w", id)
}

func (s *Store) ReplaceHabitCompletions(habitID string, completions []models.HabitCompletion) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM habit_completions WHERE habit_id = $1", habitID); err != nil {
		return fmt.Errorf("clearing completions: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM habit_streaks WHERE habit_id = $1", habitID); err != nil {
		return fmt.Errorf("clearing streak: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO habit_completions (` + completionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range completions {
		if c.HabitID != habitID {
			return fmt.Errorf("completion %s belongs to habit %s, not %s", c.ID, c.HabitID, habitID)
		}
		if _, err := stmt.Exec(c.ID, c.HabitID, c.CompletionDate, c.Count, c.Note,
			c.CreatedAt.UTC().Format(timestampFormat)); err != nil {
			return fmt.Errorf("inserting completion for %s: %w", c.CompletionDate, err)
		}
	}

	return tx.Commit()
}
