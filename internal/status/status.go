// Package status holds the live state of a harvest run: its phase, the latest
// message, a short rolling log and the OTP handoff slot.
package status

import (
	"context"
	"sync"
	"time"
)

// Phase is the coarse state of the harvester.
type Phase string

const (
	Idle          Phase = "IDLE"
	Running       Phase = "RUNNING"
	WaitingForOTP Phase = "WAITING_FOR_OTP"
	Completed     Phase = "COMPLETED"
	Error         Phase = "ERROR"
)

// MaxLogs bounds the rolling log.
const MaxLogs = 10

// Snapshot is a point-in-time copy of the tracker, shaped for JSON polling.
type Snapshot struct {
	Status   Phase    `json:"status"`
	Message  string   `json:"message"`
	OTPInput *string  `json:"otp_input"`
	Logs     []string `json:"logs"`
}

// Tracker is safe for concurrent use. One tracker is shared by the harvest
// goroutine, which writes, and the HTTP handlers, which read and submit OTPs.
type Tracker struct {
	mu      sync.Mutex
	status  Phase
	message string
	otp     *string
	logs    []string

	otpReady chan struct{}
}

// NewTracker returns a tracker in the reset state.
func NewTracker() *Tracker {
	t := &Tracker{otpReady: make(chan struct{}, 1)}
	t.Reset()
	return t
}

// Set updates the phase. A non-empty message replaces the current message and
// is appended to the log; an empty message leaves both untouched.
func (t *Tracker) Set(phase Phase, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = phase
	if message == "" {
		return
	}
	t.message = message
	t.logs = append(t.logs, message)
	if len(t.logs) > MaxLogs {
		t.logs = append([]string(nil), t.logs[len(t.logs)-MaxLogs:]...)
	}
}

// Reset restores IDLE/"Ready" with an empty log and no pending OTP.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.status = Idle
	t.message = "Ready"
	t.otp = nil
	t.logs = []string{}
	t.mu.Unlock()

	select {
	case <-t.otpReady:
	default:
	}
}

// Phase returns the current phase.
func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// SubmitOTP stores a code for the waiting login flow. It may be called at any
// time; a code submitted while nothing waits is picked up by the next wait or
// discarded by the next Reset.
func (t *Tracker) SubmitOTP(code string) {
	t.mu.Lock()
	t.otp = &code
	t.mu.Unlock()

	select {
	case t.otpReady <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Status:  t.status,
		Message: t.message,
		Logs:    append([]string{}, t.logs...),
	}
	if t.otp != nil {
		code := *t.otp
		snap.OTPInput = &code
	}
	return snap
}

// AwaitOTP blocks until a non-empty code has been submitted, then clears the
// slot and returns it. On every tick it runs check, and returns its error so
// the caller can abort when the browser has gone away. There is no timeout
// other than ctx.
func (t *Tracker) AwaitOTP(ctx context.Context, tick time.Duration, check func(context.Context) error) (string, error) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		if code, ok := t.takeOTP(); ok {
			return code, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.otpReady:
		case <-ticker.C:
			if check != nil {
				if err := check(ctx); err != nil {
					return "", err
				}
			}
		}
	}
}

func (t *Tracker) takeOTP() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.otp == nil {
		return "", false
	}
	code := *t.otp
	t.otp = nil
	if code == "" {
		return "", false
	}
	return code, true
}
