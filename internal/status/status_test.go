package status

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackerIsReset(t *testing.T) {
	snap := NewTracker().Snapshot()

	assert.Equal(t, Idle, snap.Status)
	assert.Equal(t, "Ready", snap.Message)
	assert.Nil(t, snap.OTPInput)
	assert.NotNil(t, snap.Logs)
	assert.Empty(t, snap.Logs)
}

func TestSetCapsLogsFIFO(t *testing.T) {
	tr := NewTracker()
	for i := 1; i <= 15; i++ {
		tr.Set(Running, fmt.Sprintf("msg %d", i))
	}

	snap := tr.Snapshot()
	require.Len(t, snap.Logs, MaxLogs)
	assert.Equal(t, "msg 6", snap.Logs[0])
	assert.Equal(t, "msg 15", snap.Logs[MaxLogs-1])
	assert.Equal(t, "msg 15", snap.Message)
}

func TestSetWithEmptyMessageKeepsMessage(t *testing.T) {
	tr := NewTracker()
	tr.Set(Running, "Attempting login")
	tr.Set(WaitingForOTP, "")

	snap := tr.Snapshot()
	assert.Equal(t, WaitingForOTP, snap.Status)
	assert.Equal(t, "Attempting login", snap.Message)
	assert.Equal(t, []string{"Attempting login"}, snap.Logs)
}

func TestResetClearsEverything(t *testing.T) {
	tr := NewTracker()
	tr.Set(Error, "boom")
	tr.SubmitOTP("123456")

	tr.Reset()

	snap := tr.Snapshot()
	assert.Equal(t, Idle, snap.Status)
	assert.Equal(t, "Ready", snap.Message)
	assert.Nil(t, snap.OTPInput)
	assert.Empty(t, snap.Logs)
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Set(Running, "one")
	tr.SubmitOTP("42")

	snap := tr.Snapshot()
	snap.Logs[0] = "mutated"
	*snap.OTPInput = "mutated"

	again := tr.Snapshot()
	assert.Equal(t, "one", again.Logs[0])
	assert.Equal(t, "42", *again.OTPInput)
}

func TestAwaitOTPConsumesSubmittedCode(t *testing.T) {
	tr := NewTracker()

	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.SubmitOTP("654321")
	}()

	code, err := tr.AwaitOTP(context.Background(), time.Hour, nil)
	require.NoError(t, err)
	assert.Equal(t, "654321", code)
	assert.Nil(t, tr.Snapshot().OTPInput)
}

func TestAwaitOTPReturnsCodeSubmittedEarly(t *testing.T) {
	tr := NewTracker()
	tr.SubmitOTP("111111")

	code, err := tr.AwaitOTP(context.Background(), time.Hour, nil)
	require.NoError(t, err)
	assert.Equal(t, "111111", code)
}

func TestAwaitOTPIgnoresEmptyCode(t *testing.T) {
	tr := NewTracker()
	tr.SubmitOTP("")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := tr.AwaitOTP(ctx, time.Hour, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwaitOTPStopsWhenLivenessFails(t *testing.T) {
	tr := NewTracker()
	gone := errors.New("browser closed")

	checks := 0
	_, err := tr.AwaitOTP(context.Background(), 5*time.Millisecond, func(context.Context) error {
		checks++
		if checks == 3 {
			return gone
		}
		return nil
	})

	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 3, checks)
}

func TestAwaitOTPHonoursCancellation(t *testing.T) {
	tr := NewTracker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.AwaitOTP(ctx, time.Hour, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			tr.Set(Running, fmt.Sprintf("tick %d", i))
		}
	}()

	for i := 0; i < 500; i++ {
		snap := tr.Snapshot()
		assert.LessOrEqual(t, len(snap.Logs), MaxLogs)
	}
	<-done
}
