package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verte-zerg/tuimath/internal/model"
)

// GetSettings loads the stored settings for a profile. Missing rows and
// query failures both fall back to the built-in defaults so a drill can
// always start.
func (s *Store) GetSettings(ctx context.Context, userID *int64) model.Settings {
	clause := "user_id IS NULL"
	args := []any{}
	if userID != nil {
		clause = "user_id = ?"
		args = append(args, *userID)
	}
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT addition_enabled, addition_min1, addition_max1, addition_min2, addition_max2,
			subtraction_enabled, subtraction_min1, subtraction_max1, subtraction_min2, subtraction_max2,
			multiplication_enabled, multiplication_min1, multiplication_max1, multiplication_min2, multiplication_max2,
			division_enabled, division_min1, division_max1, division_min2, division_max2
		 FROM settings WHERE %s`, clause), args...)

	var settings model.Settings
	var addEnabled, subEnabled, mulEnabled, divEnabled int
	err := row.Scan(
		&addEnabled, &settings.Addition.A.Min, &settings.Addition.A.Max, &settings.Addition.B.Min, &settings.Addition.B.Max,
		&subEnabled, &settings.Subtraction.A.Min, &settings.Subtraction.A.Max, &settings.Subtraction.B.Min, &settings.Subtraction.B.Max,
		&mulEnabled, &settings.Multiplication.A.Min, &settings.Multiplication.A.Max, &settings.Multiplication.B.Min, &settings.Multiplication.B.Max,
		&divEnabled, &settings.Division.A.Min, &settings.Division.A.Max, &settings.Division.B.Min, &settings.Division.B.Max,
	)
	if err != nil {
		return model.DefaultSettings()
	}
	settings.Addition.Enabled = addEnabled != 0
	settings.Subtraction.Enabled = subEnabled != 0
	settings.Multiplication.Enabled = mulEnabled != 0
	settings.Division.Enabled = divEnabled != 0
	return settings
}

// UpdateSettings validates and upserts the settings row for a profile.
func (s *Store) UpdateSettings(ctx context.Context, userID *int64, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	clause := "user_id IS NULL"
	args := []any{}
	if userID != nil {
		clause = "user_id = ?"
		args = append(args, *userID)
	}
	var id int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM settings WHERE %s`, clause), args...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO settings (user_id,
				addition_enabled, addition_min1, addition_max1, addition_min2, addition_max2,
				subtraction_enabled, subtraction_min1, subtraction_max1, subtraction_min2, subtraction_max2,
				multiplication_enabled, multiplication_min1, multiplication_max1, multiplication_min2, multiplication_max2,
				division_enabled, division_min1, division_max1, division_min2, division_max2)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			append([]any{userID}, settingsArgs(settings)...)...)
		return err
	case err != nil:
		return err
	default:
		_, err = s.db.ExecContext(ctx,
			`UPDATE settings SET
				addition_enabled = ?, addition_min1 = ?, addition_max1 = ?, addition_min2 = ?, addition_max2 = ?,
				subtraction_enabled = ?, subtraction_min1 = ?, subtraction_max1 = ?, subtraction_min2 = ?, subtraction_max2 = ?,
				multiplication_enabled = ?, multiplication_min1 = ?, multiplication_max1 = ?, multiplication_min2 = ?, multiplication_max2 = ?,
				division_enabled = ?, division_min1 = ?, division_max1 = ?, division_min2 = ?, division_max2 = ?
			 WHERE id = ?`,
			append(settingsArgs(settings), id)...)
		return err
	}
}

func settingsArgs(settings model.Settings) []any {
	return []any{
		boolInt(settings.Addition.Enabled), settings.Addition.A.Min, settings.Addition.A.Max, settings.Addition.B.Min, settings.Addition.B.Max,
		boolInt(settings.Subtraction.Enabled), settings.Subtraction.A.Min, settings.Subtraction.A.Max, settings.Subtraction.B.Min, settings.Subtraction.B.Max,
		boolInt(settings.Multiplication.Enabled), settings.Multiplication.A.Min, settings.Multiplication.A.Max, settings.Multiplication.B.Min, settings.Multiplication.B.Max,
		boolInt(settings.Division.Enabled), settings.Division.A.Min, settings.Division.A.Max, settings.Division.B.Min, settings.Division.B.Max,
	}
}
