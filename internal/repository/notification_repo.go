package repository

import (
	"context"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
)

type CreateNotificationInput struct {
	RecipientID int64
	Title       string
	Message     string
	Type        string
	Link        *string
}

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(
	ctx context.Context,
	input CreateNotificationInput,
) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (recipient_id, title, message, type, is_read, link)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING id, recipient_id, title, message, type, is_read, link, created_at
	`
	var n models.Notification
	err := r.db.QueryRow(ctx, query, input.RecipientID, input.Title, input.Message, input.Type, input.Link).Scan(
		&n.ID,
		&n.RecipientID,
		&n.Title,
		&n.Message,
		&n.Type,
		&n.IsRead,
		&n.Link,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) ListByRecipient(
	ctx context.Context,
	recipientID int64,
	limit int,
) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, recipient_id, title, message, type, is_read, link, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.IsRead,
			&n.Link,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID int64, id int64) error {
	_, err := r.db.Exec(
		ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`,
		id,
		recipientID,
	)
	return err
}
