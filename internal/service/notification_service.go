package service

import (
	"context"
	"strings"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/events"
	pktNats "ai-chat-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService bridges the NATS event bus to connected websocket
// clients, so a tenant finishing provisioning on another instance still
// reaches the user's open tab.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		hub:        hub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "chat-notif-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// The NATS subject carries the stream prefix
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	payload := event.Payload()

	userIdStr, _ := payload["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event without parsable user_id", map[string]interface{}{"type": typeCode})
		return nil
	}

	switch typeCode {
	case events.TenantProvisionedType:
		s.hub.Send(userId, constant.PushEventTenantStatus, map[string]interface{}{
			"tenant_id": payload["tenant_id"],
			"status":    "active",
			"progress":  100,
		})
	case events.TenantProvisionFailedType:
		s.hub.Send(userId, constant.PushEventNotice, map[string]interface{}{
			"severity": "error",
			"message":  payload["reason"],
		})
	default:
		s.logger.Debug("NotificationService", "Ignoring event", map[string]interface{}{"type": typeCode})
	}
	return nil
}
