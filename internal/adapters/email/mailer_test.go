package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, MailerConfig{FromAddress: "hello@example.com", FromName: "Community"}, discardLogger())

	err := m.Send(context.Background(), "amina@example.com", "Hi", "<p>hi</p>", "")
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "Community <hello@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"amina@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(client.input.Message.Subject.Data))
	require.NotNil(t, client.input.Message.Body.Html)
	assert.Nil(t, client.input.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	m := newSESMailer(client, MailerConfig{FromAddress: "hello@example.com"}, discardLogger())

	err := m.Send(context.Background(), "amina@example.com", "Hi", "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SES")
	assert.Equal(t, "hello@example.com", aws.ToString(client.input.Source))
}

func TestNewMailer(t *testing.T) {
	tests := []struct {
		name    string
		config  MailerConfig
		wantSES bool
		wantErr bool
	}{
		{name: "noop", config: MailerConfig{Provider: "noop"}},
		{name: "empty provider", config: MailerConfig{}},
		{name: "unknown provider", config: MailerConfig{Provider: "carrier-pigeon"}},
		{name: "ses", config: MailerConfig{Provider: "ses", FromAddress: "hello@example.com", SES: SESConfig{Region: "eu-west-1"}}, wantSES: true},
		{name: "ses without from address", config: MailerConfig{Provider: "ses"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMailer(tt.config, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, isSES := m.(*sesMailer)
			assert.Equal(t, tt.wantSES, isSES)
			if !tt.wantSES {
				assert.NoError(t, m.Send(context.Background(), "a@b.com", "s", "", ""))
			}
		})
	}
}
