package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/clinicsys/clinic-services/internal/events"
)

// NotificationService reacts to account lifecycle events. Delivery is a
// logging stub until the mail integration lands; the subscription wiring is
// what the rest of the system depends on.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	emailFrom  string
}

// NewNotificationService builds the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, emailFrom string) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger, emailFrom: emailFrom}
}

// RegisterHandlers subscribes the service to the events it cares about.
func (s *NotificationService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventUserRegistered, s.handleUserRegistered)
}

func (s *NotificationService) handleUserRegistered(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}
	s.logger.Info("sending welcome email",
		zap.String("from", s.emailFrom),
		zap.String("to", payload.Email),
		zap.String("user_id", event.UserID),
	)
	return nil
}
