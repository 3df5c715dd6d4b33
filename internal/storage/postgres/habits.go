package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

const habitColumns = `id, name, description, frequency_type, frequency_value, specific_days,
	target_count, habit_type, tracking_mode, created_at, archived_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var specificDays, createdAt string
	var archivedAt, deletedAt sql.NullString

	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.FrequencyType, &h.FrequencyValue, &specificDays,
		&h.TargetCount, &h.HabitType, &h.TrackingMode, &createdAt, &archivedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	if h.SpecificDays, err = models.DecodeDays(specificDays); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse specific_days for habit %s: %w", h.ID, err)
	}
	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	if h.ArchivedAt, err = parseNullTime(archivedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse archived_at for habit %s: %w", h.ID, err)
	}
	if h.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse deleted_at for habit %s: %w", h.ID, err)
	}

	return h, nil
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func (s *Store) AddHabit(habit models.Habit) error {
	_, err := s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		habit.ID, habit.Name, habit.Description, habit.FrequencyType, habit.FrequencyValue,
		models.EncodeDays(habit.SpecificDays), habit.TargetCount, habit.HabitType, habit.TrackingMode,
		habit.CreatedAt.Format(time.RFC3339), nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt))
	return err
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = $1 AND deleted_at IS NULL`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, err)
	}
	return h, nil
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE name = $1 AND deleted_at IS NULL`, name)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, err)
	}
	return h, nil
}

func (s *Store) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	exists, err := s.tableExists("habits")
	if err != nil || !exists {
		return []models.Habit{}, nil
	}

	query := "SELECT " + habitColumns + " FROM habits WHERE 1=1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at, name"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	result, err := s.db.Exec(`
		UPDATE habits SET
			name = $1, description = $2, frequency_type = $3, frequency_value = $4, specific_days = $5,
			target_count = $6, habit_type = $7, tracking_mode = $8, archived_at = $9, deleted_at = $10
		WHERE id = $11`,
		habit.Name, habit.Description, habit.FrequencyType, habit.FrequencyValue,
		models.EncodeDays(habit.SpecificDays), habit.TargetCount, habit.HabitType, habit.TrackingMode,
		nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt), habit.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result, "habit %s: %w", habit.ID)
}

func (s *Store) ArchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = $1 WHERE id = $2 AND deleted_at IS NULL AND archived_at IS NULL`,
		time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return expectOneRow(result, "habit %s not found or already archived/deleted: %w", id)
}

func (s *Store) UnarchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = NULL WHERE id = $1 AND deleted_at IS NULL AND archived_at IS NOT NULL`,
		id)
	if err != nil {
		return err
	}
	return expectOneRow(result, "habit %s not found or not archived: %w", id)
}

func (s *Store) DeleteHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return expectOneRow(result, "habit %s not found or already deleted: %w", id)
}

func (s *Store) RestoreHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`,
		id)
	if err != nil {
		return err
	}
	return expectOneRow(result, "habit %s not found or not deleted: %w", id)
}

// expectOneRow turns a zero-row update into an error wrapping sql.ErrNoRows.
func expectOneRow(result sql.Result, format, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf(format, id, sql.ErrNoRows)
	}
	return nil
}
