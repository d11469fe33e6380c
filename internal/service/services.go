package service

import (
	"github.com/hoseacodes/mailgate/internal/server"
)

type Services struct {
	Notification *NotificationService
}

func NewService(s *server.Server) (*Services, error) {
	notificationService := NewNotificationService(s)

	return &Services{
		Notification: notificationService,
	}, nil
}
