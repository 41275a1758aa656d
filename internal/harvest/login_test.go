package harvest

import (
	"context"
	"testing"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/logging"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedURL = "https://www.linkedin.com/feed/"

var creds = Credentials{Email: "me@example.com", Password: "hunter2"}

func testLoginConfig() LoginConfig {
	cfg := DefaultLoginConfig()
	cfg.ChallengeTimeout = 10 * time.Millisecond
	cfg.ConfirmTimeout = 50 * time.Millisecond
	cfg.FieldTimeout = 10 * time.Millisecond
	cfg.PollInterval = 4 * time.Millisecond
	return cfg
}

func TestLoginWithoutChallenge(t *testing.T) {
	d := newFakeDriver(nil)
	d.onClick[submitButton.String()] = feedURL
	tracker := status.NewTracker()

	err := NewAuthenticator(d, tracker, logging.Discard(), testLoginConfig()).Login(context.Background(), creds)
	require.NoError(t, err)

	assert.Equal(t, "me@example.com", d.typed["username"])
	assert.Equal(t, "hunter2", d.typed["password"])

	snap := tracker.Snapshot()
	assert.Equal(t, status.Running, snap.Status)
	assert.Equal(t, "Login successful", snap.Message)
	assert.Contains(t, snap.Logs, "No OTP requested")
	assert.NotContains(t, snap.Logs, "LinkedIn asked for OTP. Please enter it.")
}

func TestLoginWithOTPChallenge(t *testing.T) {
	d := newFakeDriver(nil)
	d.present["input__email_verification_pin"] = true
	d.onClick[submitButton.String()] = "https://www.linkedin.com/checkpoint/challenge"
	d.onClick[pinSubmit.String()] = feedURL
	d.present["email-pin-submit-button"] = true
	tracker := status.NewTracker()

	go func() {
		for tracker.Phase() != status.WaitingForOTP {
			time.Sleep(time.Millisecond)
		}
		tracker.SubmitOTP("482913")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := NewAuthenticator(d, tracker, logging.Discard(), testLoginConfig()).Login(ctx, creds)
	require.NoError(t, err)

	assert.Equal(t, "482913", d.typed["input__email_verification_pin"])

	snap := tracker.Snapshot()
	assert.Nil(t, snap.OTPInput, "code is consumed")
	assert.Equal(t, "Login successful", snap.Message)
	assert.Contains(t, snap.Logs, "LinkedIn asked for OTP. Please enter it.")
}

func TestLoginAbortsWhenBrowserClosesDuringOTPWait(t *testing.T) {
	d := newFakeDriver(nil)
	d.present["input__email_verification_pin"] = true
	tracker := status.NewTracker()

	go func() {
		for tracker.Phase() != status.WaitingForOTP {
			time.Sleep(time.Millisecond)
		}
		d.Close()
	}()

	err := NewAuthenticator(d, tracker, logging.Discard(), testLoginConfig()).Login(context.Background(), creds)
	require.Error(t, err)
	assert.Equal(t, status.Error, tracker.Phase())
}

func TestLoginMissingCredentials(t *testing.T) {
	for name, c := range map[string]Credentials{
		"no email":    {Password: "x"},
		"no password": {Email: "x"},
	} {
		t.Run(name, func(t *testing.T) {
			d := newFakeDriver(nil)
			tracker := status.NewTracker()

			err := NewAuthenticator(d, tracker, logging.Discard(), testLoginConfig()).Login(context.Background(), c)
			assert.ErrorIs(t, err, ErrMissingCredentials)
			assert.Empty(t, d.navigated, "no navigation without credentials")

			snap := tracker.Snapshot()
			assert.Equal(t, status.Error, snap.Status)
			assert.Equal(t, "Missing credentials", snap.Message)
		})
	}
}

func TestLoginTimesOutWithoutFeed(t *testing.T) {
	d := newFakeDriver(nil)
	d.onClick[submitButton.String()] = "https://www.linkedin.com/checkpoint/lg/login-submit"
	tracker := status.NewTracker()

	err := NewAuthenticator(d, tracker, logging.Discard(), testLoginConfig()).Login(context.Background(), creds)
	assert.ErrorIs(t, err, ErrAuthTimeout)
	assert.Equal(t, status.Error, tracker.Phase())
}

func TestLoginFailsWhenFormMissing(t *testing.T) {
	d := newFakeDriver(nil)
	d.present = map[string]bool{}
	tracker := status.NewTracker()

	err := NewAuthenticator(d, tracker, logging.Discard(), testLoginConfig()).Login(context.Background(), creds)
	require.Error(t, err)

	snap := tracker.Snapshot()
	assert.Equal(t, status.Error, snap.Status)
	assert.Contains(t, snap.Message, "Login failed:")
}
