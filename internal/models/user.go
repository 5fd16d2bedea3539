package models

import "time"

type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	FullName          string    `json:"full_name"`
	Role              string    `json:"role"`
	HourlyRate        *float64  `json:"hourly_rate,omitempty"`
	CompletedSessions int       `json:"completed_sessions"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
