package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/events"
)

// EmailKind names a notification template.
type EmailKind string

const (
	EmailProviderApproved EmailKind = "provider_approval"
	EmailProviderRejected EmailKind = "provider_rejection"
	EmailNewRequest       EmailKind = "service_request_received"
	EmailRequestAccepted  EmailKind = "request_accepted"
	EmailRequestRejected  EmailKind = "request_rejected"
)

// EmailSender delivers one notification. The boolean result is used
// only for logging; callers never block on or retry a failed send.
type EmailSender interface {
	Send(ctx context.Context, kind EmailKind, recipient string, context map[string]string) bool
}

// NotificationService bridges workflow events to outbound email.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     EmailSender
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender EmailSender, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to workflow events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventProviderApproved, n.handleProviderApproved)
	n.dispatcher.Subscribe(events.EventProviderRejected, n.handleProviderRejected)
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleRequestCreated)
	n.dispatcher.Subscribe(events.EventRequestAccepted, n.handleRequestAccepted)
	n.dispatcher.Subscribe(events.EventRequestRejected, n.handleRequestRejected)
}

func (n *NotificationService) handleProviderApproved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ProviderDecisionPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, EmailProviderApproved, payload.ProviderEmail, map[string]string{
		"provider_name": payload.ProviderName,
		"login_url":     n.cfg.FrontendURL + "/login",
	})
	return nil
}

func (n *NotificationService) handleProviderRejected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ProviderDecisionPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, EmailProviderRejected, payload.ProviderEmail, map[string]string{
		"provider_name": payload.ProviderName,
		"support_email": n.cfg.EmailFrom,
	})
	return nil
}

func (n *NotificationService) handleRequestCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestCreatedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, EmailNewRequest, payload.ProviderEmail, map[string]string{
		"provider_name":  payload.ProviderName,
		"service_name":   payload.ServiceName,
		"requester_name": payload.RequesterName,
	})
	return nil
}

func (n *NotificationService) handleRequestAccepted(ctx context.Context, event events.Event) error {
	return n.handleRequestDecision(ctx, event, EmailRequestAccepted)
}

func (n *NotificationService) handleRequestRejected(ctx context.Context, event events.Event) error {
	return n.handleRequestDecision(ctx, event, EmailRequestRejected)
}

func (n *NotificationService) handleRequestDecision(ctx context.Context, event events.Event, kind EmailKind) error {
	payload, ok := event.Payload.(events.RequestDecisionPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, kind, payload.RequesterEmail, map[string]string{
		"requester_name": payload.RequesterName,
		"service_name":   payload.ServiceName,
		"provider_name":  payload.ProviderName,
	})
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, kind EmailKind, recipient string, emailCtx map[string]string) {
	if n.sender == nil {
		return
	}
	if ok := n.sender.Send(ctx, kind, recipient, emailCtx); !ok {
		n.logger.Warn("notification delivery failed",
			zap.String("kind", string(kind)),
			zap.String("recipient", recipient))
		return
	}
	n.logger.Info("notification sent",
		zap.String("kind", string(kind)),
		zap.String("recipient", recipient))
}

// logEmailSender is the default EmailSender: it logs the outbound mail
// instead of talking to an SMTP relay.
type logEmailSender struct {
	logger *zap.Logger
	from   string
}

// NewLogEmailSender builds the logging sender.
func NewLogEmailSender(logger *zap.Logger, cfg config.NotificationConfig) EmailSender {
	return &logEmailSender{logger: logger, from: cfg.EmailFrom}
}

func (s *logEmailSender) Send(_ context.Context, kind EmailKind, recipient string, emailCtx map[string]string) bool {
	s.logger.Debug("email",
		zap.String("from", s.from),
		zap.String("to", recipient),
		zap.String("template", string(kind)),
		zap.String("subject", subjectFor(kind, emailCtx)),
	)
	return true
}

func subjectFor(kind EmailKind, emailCtx map[string]string) string {
	switch kind {
	case EmailProviderApproved:
		return "Your Service Provider Application Has Been Approved"
	case EmailProviderRejected:
		return "Update on Your Service Provider Application"
	case EmailNewRequest:
		return fmt.Sprintf("New Service Request for %s", emailCtx["service_name"])
	case EmailRequestAccepted:
		return fmt.Sprintf("Your Service Request for %s Has Been Accepted", emailCtx["service_name"])
	case EmailRequestRejected:
		return fmt.Sprintf("Update on Your Service Request for %s", emailCtx["service_name"])
	}
	return string(kind)
}
