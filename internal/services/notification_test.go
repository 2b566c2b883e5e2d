package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventparticipation/internal/domain"
)

type sentEmail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	sent    []sentEmail
	failFor string
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == m.failFor {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, html: html, text: text})
	return nil
}

// fakeRenderer renders the template name as the subject.
type fakeRenderer struct{}

func (fakeRenderer) Render(name string, data any) (string, string, string, error) {
	d, ok := data.(domain.DecisionEmailData)
	if !ok {
		return "", "", "", errors.New("unexpected data")
	}
	return name, "<p>" + d.Name + "</p>", d.Name, nil
}

type emailDirectory map[int64]*domain.User

func (d emailDirectory) ExistsUser(_ context.Context, id int64) (bool, error) {
	_, ok := d[id]
	return ok, nil
}

func (d emailDirectory) GetUser(_ context.Context, id int64) (*domain.User, error) {
	u, ok := d[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func TestDecisionNotifier_NotifyDecision(t *testing.T) {
	users := emailDirectory{
		10: {ID: 10, Name: "Ada", Email: "ada@example.com"},
		11: {ID: 11, Name: "Bob", Email: "bob@example.com"},
		12: {ID: 12, Name: "NoMail"},
		13: {ID: 13, Name: "Broken", Email: "broken@example.com"},
	}
	mailer := &fakeMailer{failFor: "broken@example.com"}
	n := NewDecisionNotifier(users, mailer, fakeRenderer{}, 0, slog.New(slog.DiscardHandler))

	result := domain.DecisionResult{
		Confirmed: []domain.ParticipationRequest{
			{ID: 1, EventID: 7, RequesterID: 10, Status: domain.StatusConfirmed},
			{ID: 2, EventID: 7, RequesterID: 13, Status: domain.StatusConfirmed},
		},
		Rejected: []domain.ParticipationRequest{
			{ID: 3, EventID: 7, RequesterID: 11, Status: domain.StatusRejected},
			{ID: 4, EventID: 7, RequesterID: 12, Status: domain.StatusRejected},
			{ID: 5, EventID: 7, RequesterID: 99, Status: domain.StatusRejected},
		},
	}

	n.NotifyDecision(context.Background(), result)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, sentEmail{to: "ada@example.com", subject: templateRequestConfirmed, html: "<p>Ada</p>", text: "Ada"}, mailer.sent[0])
	assert.Equal(t, "bob@example.com", mailer.sent[1].to)
	assert.Equal(t, templateRequestRejected, mailer.sent[1].subject)
}

func TestDecisionNotifier_IgnoresCanceledContext(t *testing.T) {
	users := emailDirectory{10: {ID: 10, Name: "Ada", Email: "ada@example.com"}}
	mailer := &fakeMailer{}
	n := NewDecisionNotifier(users, mailer, fakeRenderer{}, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.NotifyDecision(ctx, domain.DecisionResult{
		Confirmed: []domain.ParticipationRequest{{ID: 1, EventID: 7, RequesterID: 10, Status: domain.StatusConfirmed}},
	})
	assert.Len(t, mailer.sent, 1)
}
