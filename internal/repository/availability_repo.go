package repository

import (
	"context"
	"time"
)

type AvailabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// WeeklySlots returns the recurring slot labels configured for a mentor on a weekday.
func (r *AvailabilityRepository) WeeklySlots(
	ctx context.Context,
	mentorID int64,
	weekday time.Weekday,
) ([]string, error) {
	query := `
		SELECT start_time
		FROM weekly_availability
		WHERE mentor_id = $1 AND weekday = $2
		ORDER BY start_time ASC
	`
	rows, err := r.db.Query(ctx, query, mentorID, int(weekday))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]string, 0)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// SpecialSlots returns the one-off slot labels configured for a mentor on a date.
func (r *AvailabilityRepository) SpecialSlots(
	ctx context.Context,
	mentorID int64,
	date time.Time,
) ([]string, error) {
	query := `
		SELECT start_time
		FROM special_availability
		WHERE mentor_id = $1 AND date = $2
		ORDER BY start_time ASC
	`
	rows, err := r.db.Query(ctx, query, mentorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]string, 0)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
