package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventparticipation/internal/domain"
)

const (
	templateRequestConfirmed = "request_confirmed"
	templateRequestRejected  = "request_rejected"
)

type decisionNotifier struct {
	users       domain.UserDirectory
	mailer      domain.Mailer
	renderer    domain.EmailTemplateRenderer
	sendTimeout time.Duration
	logger      *slog.Logger
}

// NewDecisionNotifier returns a DecisionNotifier that mails every requester
// whose request was confirmed or rejected. sendTimeout bounds each e-mail.
func NewDecisionNotifier(users domain.UserDirectory, mailer domain.Mailer, renderer domain.EmailTemplateRenderer, sendTimeout time.Duration, logger *slog.Logger) domain.DecisionNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &decisionNotifier{
		users:       users,
		mailer:      mailer,
		renderer:    renderer,
		sendTimeout: sendTimeout,
		logger:      logger.With("component", "decision_notifier"),
	}
}

// NotifyDecision runs after the decision is committed, so failures are only logged.
func (n *decisionNotifier) NotifyDecision(ctx context.Context, result domain.DecisionResult) {
	ctx = context.WithoutCancel(ctx)
	for _, req := range result.Changed() {
		if err := n.notify(ctx, req); err != nil {
			n.logger.WarnContext(ctx, "decision email not sent",
				"request_id", req.ID,
				"requester_id", req.RequesterID,
				"status", req.Status,
				"err", err,
			)
		}
	}
}

func (n *decisionNotifier) notify(ctx context.Context, req domain.ParticipationRequest) error {
	var name string
	switch req.Status {
	case domain.StatusConfirmed:
		name = templateRequestConfirmed
	case domain.StatusRejected:
		name = templateRequestRejected
	default:
		return nil
	}
	if n.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.sendTimeout)
		defer cancel()
	}

	user, err := n.users.GetUser(ctx, req.RequesterID)
	if err != nil {
		return fmt.Errorf("failed to load requester: %w", err)
	}
	if user == nil || user.Email == "" {
		return nil
	}
	data := domain.DecisionEmailData{
		Email:     user.Email,
		Name:      user.Name,
		EventID:   req.EventID,
		RequestID: req.ID,
		Status:    req.Status,
	}
	subject, htmlBody, textBody, err := n.renderer.Render(name, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", name, err)
	}
	if err := n.mailer.Send(ctx, user.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", name, err)
	}
	n.logger.DebugContext(ctx, "decision email sent", "request_id", req.ID, "to", user.Email)
	return nil
}

// noopNotifier is used when no mailer is configured.
type noopNotifier struct{}

// NewNoopNotifier returns a DecisionNotifier that does nothing.
func NewNoopNotifier() domain.DecisionNotifier { return noopNotifier{} }

func (noopNotifier) NotifyDecision(context.Context, domain.DecisionResult) {}
