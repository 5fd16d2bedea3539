package models

import "time"

type Notification struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	IsRead      bool      `json:"is_read"`
	Link        *string   `json:"link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
