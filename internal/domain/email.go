package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// DecisionEmailData holds data for the request confirmed/rejected emails.
type DecisionEmailData struct {
	Email     string
	Name      string
	EventID   int64
	RequestID int64
	Status    RequestStatus
}

// DecisionNotifier tells requesters about an organizer decision that has
// already been committed. It never fails the decision itself.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, result DecisionResult)
}
