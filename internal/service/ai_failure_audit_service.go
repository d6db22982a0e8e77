package service

import (
	"context"
	"fmt"

	"hearth-chat-be/internal/pkg/logger"
	"hearth-chat-be/pkg/events"
	pktNats "hearth-chat-be/pkg/nats"
)

const aiFailureAuditDurable = "chat-ai-failure-audit"

// IAIFailureAuditService keeps a durable audit trail of provider outages.
// Synthesized error replies are already visible in chat history; this
// consumer gives operators one stream to watch across all rooms and
// instances.
type IAIFailureAuditService interface {
	Start() error
}

type aiFailureAuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAIFailureAuditService(subscriber *pktNats.Subscriber, log logger.ILogger) IAIFailureAuditService {
	return &aiFailureAuditService{
		subscriber: subscriber,
		logger:     log,
	}
}

func (s *aiFailureAuditService) Start() error {
	return s.subscriber.Subscribe(
		pktNats.SubjectFor(events.TypeAIFailed),
		aiFailureAuditDurable,
		s.record,
	)
}

func (s *aiFailureAuditService) record(_ context.Context, event events.Event) error {
	payload := event.Payload()
	s.logger.Warn("AIFailureAudit", "Provider failure", map[string]interface{}{
		"room_id":  fmt.Sprintf("%v", payload["room_id"]),
		"provider": payload["provider"],
		"reason":   payload["reason"],
	})
	return nil
}
