package email

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventparticipation/internal/domain"
)

func TestTemplateRenderer_Render(t *testing.T) {
	r := NewTemplateRenderer()
	data := domain.DecisionEmailData{
		Email:     "ada@example.com",
		Name:      "Ada <admin>",
		EventID:   7,
		RequestID: 42,
		Status:    domain.StatusConfirmed,
	}

	subject, html, text, err := r.Render("request_confirmed", data)
	require.NoError(t, err)
	assert.Equal(t, "Your request for event #7 was confirmed", subject)
	assert.Contains(t, text, "Hi Ada <admin>,")
	assert.Contains(t, text, "#42")
	assert.Contains(t, html, "Ada &lt;admin&gt;")

	subject, _, text, err = r.Render("request_rejected", data)
	require.NoError(t, err)
	assert.Equal(t, "Your request for event #7 was declined", subject)
	assert.Contains(t, text, "declined by the organizer")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("welcome", nil)
	require.Error(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &sesMailer{client: client, fromAddress: "events@example.com", fromName: "Events", logger: discardLogger()}

	err := m.Send(context.Background(), "ada@example.com", "Hello", "<p>hi</p>", "")
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "Events <events@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ada@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(client.input.Message.Subject.Data))
	require.NotNil(t, client.input.Message.Body.Html)
	assert.Nil(t, client.input.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	sendErr := errors.New("throttled")
	m := &sesMailer{client: &fakeSES{err: sendErr}, fromAddress: "events@example.com", logger: discardLogger()}

	err := m.Send(context.Background(), "ada@example.com", "Hello", "", "hi")
	require.ErrorIs(t, err, sendErr)
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)
	require.NoError(t, m.Send(context.Background(), "a@example.com", "s", "", ""))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, discardLogger())
	require.Error(t, err)

	m, err = NewMailer(MailerConfig{
		Provider:    "ses",
		FromAddress: "events@example.com",
		SES:         SESConfig{Region: "eu-west-1", AccessKeyID: "id", SecretAccessKey: "secret"},
	}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}
