package sqlite

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

func scanStreak(row rowScanner) (models.HabitStreak, error) {
	var st models.HabitStreak
	var updatedAt string
	if err := row.Scan(&st.HabitID, &st.CurrentStreak, &st.BestStreak, &st.LastCompletionDate, &updatedAt); err != nil {
		return models.HabitStreak{}, err
	}
	t, err := time.Parse(timestampFormat, updatedAt)
	if err != nil {
		return models.HabitStreak{}, fmt.Errorf("failed to parse updated_at for streak %s: %w", st.HabitID, err)
	}
	st.UpdatedAt = t
	return st, nil
}

func (s *Store) GetHabitStreak(habitID string) (models.HabitStreak, error) {
	row := s.db.QueryRow(`
		SELECT habit_id, current_streak, best_streak, last_completion_date, updated_at
		FROM habit_streaks WHERE habit_id = ?`, habitID)
	st, err := scanStreak(row)
	if err != nil {
		return models.HabitStreak{}, fmt.Errorf("streak for habit %s: %w", habitID, err)
	}
	return st, nil
}

func (s *Store) UpsertHabitStreak(st models.HabitStreak) error {
	_, err := s.db.Exec(`
		INSERT INTO habit_streaks (habit_id, current_streak, best_streak, last_completion_date, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(habit_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			best_streak = excluded.best_streak,
			last_completion_date = excluded.last_completion_date,
			updated_at = excluded.updated_at`,
		st.HabitID, st.CurrentStreak, st.BestStreak, st.LastCompletionDate, st.UpdatedAt.UTC().Format(timestampFormat))
	return err
}

// DeleteHabitStreak removes the cached streak row; a missing row is not an error.
func (s *Store) DeleteHabitStreak(habitID string) error {
	_, err := s.db.Exec("DELETE FROM habit_streaks WHERE habit_id = ?", habitID)
	return err
}

func (s *Store) GetAllHabitStreaks() ([]models.HabitStreak, error) {
	rows, err := s.db.Query(`
		SELECT habit_id, current_streak, best_streak, last_completion_date, updated_at
		FROM habit_streaks ORDER BY habit_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	streaks := []models.HabitStreak{}
	for rows.Next() {
		st, err := scanStreak(rows)
		if err != nil {
			return nil, err
		}
		streaks = append(streaks, st)
	}
	return streaks, rows.Err()
}
