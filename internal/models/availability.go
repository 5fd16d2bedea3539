package models

import "time"

// WeeklySlot is a recurring bookable hour on a given weekday.
type WeeklySlot struct {
	ID        int64        `json:"id"`
	MentorID  int64        `json:"mentor_id"`
	Weekday   time.Weekday `json:"weekday"`
	StartTime string       `json:"start_time"`
}

// SpecialSlot is a one-off bookable hour on a specific date.
type SpecialSlot struct {
	ID        int64     `json:"id"`
	MentorID  int64     `json:"mentor_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
}
