package services

import (
	"context"
	"log"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
)

type NotificationInput struct {
	RecipientID int64
	Title       string
	Message     string
	Type        string
	Link        *string
}

// Notifier is fire-and-forget: delivery failure must never roll back the
// business operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, input NotificationInput)
}

type notificationPusher interface {
	Push(recipientID int64, notification *models.Notification)
}

type notificationStore interface {
	Create(ctx context.Context, input repository.CreateNotificationInput) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID int64, id int64) error
}

type NotificationService struct {
	store  notificationStore
	pusher notificationPusher
}

func NewNotificationService(store notificationStore, pusher notificationPusher) *NotificationService {
	return &NotificationService{store: store, pusher: pusher}
}

func (s *NotificationService) Notify(ctx context.Context, input NotificationInput) {
	notification, err := s.store.Create(ctx, repository.CreateNotificationInput{
		RecipientID: input.RecipientID,
		Title:       input.Title,
		Message:     input.Message,
		Type:        input.Type,
		Link:        input.Link,
	})
	if err != nil {
		log.Printf("notification for user %d dropped: %v", input.RecipientID, err)
		return
	}
	if s.pusher != nil {
		s.pusher.Push(input.RecipientID, notification)
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID int64, limit int) ([]models.Notification, error) {
	return s.store.ListByRecipient(ctx, recipientID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientID int64, id int64) error {
	return s.store.MarkRead(ctx, recipientID, id)
}
