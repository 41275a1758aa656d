package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
)

func TestStatusPrinterSkipsRepeats(t *testing.T) {
	var buf bytes.Buffer
	p := &statusPrinter{w: &buf}
	tracker := status.NewTracker()

	tracker.Set(status.Running, "Scanning... (0/5)")
	assert.True(t, p.update(tracker.Snapshot()))
	assert.False(t, p.update(tracker.Snapshot()))

	tracker.Set(status.WaitingForOTP, "Enter the code sent to your email")
	assert.True(t, p.update(tracker.Snapshot()))

	assert.Equal(t,
		"[RUNNING] Scanning... (0/5)\n[WAITING_FOR_OTP] Enter the code sent to your email\nverification code: ",
		buf.String())
}

func TestStatusPrinterShowsFinalStatusAfterWatchStops(t *testing.T) {
	var buf bytes.Buffer
	p := &statusPrinter{w: &buf}
	tracker := status.NewTracker()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		p.watch(tracker, done)
	}()

	// The run ends before the first tick.
	tracker.Set(status.Completed, "Harvest complete! Collected 5 posts.")
	close(done)
	<-stopped

	p.update(tracker.Snapshot())
	assert.True(t, strings.HasSuffix(buf.String(), "[COMPLETED] Harvest complete! Collected 5 posts.\n"), buf.String())
	assert.Equal(t, 1, strings.Count(buf.String(), "COMPLETED"))
}
