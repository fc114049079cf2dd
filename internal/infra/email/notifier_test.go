package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSMTPNotifier_NotifyCameraDown(t *testing.T) {
	n := NewSMTPNotifier("mail.local", 1025, "snap@local", "ops@local", zap.NewNop())

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	n.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, n.NotifyCameraDown(context.Background(), "4", "connection refused"))
	assert.Equal(t, "mail.local:1025", gotAddr)
	assert.Equal(t, []string{"ops@local"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Snapshot API - Camera 4 is not responding")
	assert.Contains(t, gotMsg, "Error: connection refused")
}

func TestSMTPNotifier_SendError(t *testing.T) {
	n := NewSMTPNotifier("mail.local", 25, "snap@local", "ops@local", zap.NewNop())
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("dial tcp: connection refused")
	}

	err := n.NotifyCameraDown(context.Background(), "4", "timeout")
	assert.ErrorContains(t, err, "send email")
}
