package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeMailClient struct {
	msgs []*mail.Msg
	err  error
}

func (f *fakeMailClient) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.msgs = append(f.msgs, messages...)
	return f.err
}

func TestSMTPSender_Disabled(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587}, newSilentLogger())

	require.NoError(t, err)
	assert.False(t, s.Enabled())
	assert.False(t, s.SendEmail(context.Background(), "a@x.com", "subj", "<p>x</p>"))
}

func TestSMTPSender_Send(t *testing.T) {
	client := &fakeMailClient{}
	s := &SMTPSender{client: client, from: "alerts@example.com", logger: newSilentLogger()}

	ok := s.SendEmail(context.Background(), "a@x.com", "Subject", "<p>Body</p>")

	assert.True(t, ok)
	require.Len(t, client.msgs, 1)
	assert.Equal(t, []string{"Subject"}, client.msgs[0].GetGenHeader(mail.HeaderSubject))
}

func TestSMTPSender_InvalidRecipient(t *testing.T) {
	client := &fakeMailClient{}
	s := &SMTPSender{client: client, from: "alerts@example.com", logger: newSilentLogger()}

	assert.False(t, s.SendEmail(context.Background(), "not an address", "Subject", "<p>Body</p>"))
	assert.Empty(t, client.msgs)
}

func TestSMTPSender_ProviderFailure(t *testing.T) {
	client := &fakeMailClient{err: errors.New("dial tcp: timeout")}
	s := &SMTPSender{client: client, from: "alerts@example.com", logger: newSilentLogger()}

	assert.False(t, s.SendEmail(context.Background(), "a@x.com", "Subject", "<p>Body</p>"))
}
