package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/browser"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
)

var (
	// ErrMissingCredentials means no login was attempted.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrAuthTimeout means the feed never appeared after submitting credentials.
	ErrAuthTimeout = errors.New("authentication timed out")
)

// Page elements of the login and verification forms.
var (
	usernameField = browser.ID("username")
	passwordField = browser.ID("password")
	submitButton  = browser.XPath("//button[@type='submit']")
	pinField      = browser.ID("input__email_verification_pin")
	pinSubmit     = browser.ID("email-pin-submit-button")
)

// Credentials for the network account.
type Credentials struct {
	Email    string
	Password string
}

// LoginConfig holds the login flow timings.
type LoginConfig struct {
	URL              string
	ChallengeTimeout time.Duration
	ConfirmTimeout   time.Duration
	FieldTimeout     time.Duration
	PollInterval     time.Duration
}

// DefaultLoginConfig returns the login flow defaults.
func DefaultLoginConfig() LoginConfig {
	return LoginConfig{
		URL:              "https://www.linkedin.com/login",
		ChallengeTimeout: 3 * time.Second,
		ConfirmTimeout:   15 * time.Second,
		FieldTimeout:     10 * time.Second,
		PollInterval:     time.Second,
	}
}

// Authenticator walks the login form, pausing for a one-time passcode when
// the site asks for one.
type Authenticator struct {
	driver  browser.Driver
	tracker *status.Tracker
	logger  *slog.Logger
	config  LoginConfig

	sleep func(context.Context, time.Duration) error
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(driver browser.Driver, tracker *status.Tracker, logger *slog.Logger, config LoginConfig) *Authenticator {
	return &Authenticator{
		driver:  driver,
		tracker: tracker,
		logger:  logger,
		config:  config,
		sleep:   sleepContext,
	}
}

// Login authenticates the session. Failures are reported to the tracker as
// ERROR before being returned.
func (a *Authenticator) Login(ctx context.Context, creds Credentials) error {
	a.tracker.Set(status.Running, "Attempting login")

	if creds.Email == "" || creds.Password == "" {
		a.tracker.Set(status.Error, "Missing credentials")
		return ErrMissingCredentials
	}

	err := a.login(ctx, creds)
	switch {
	case err == nil:
		a.tracker.Set(status.Running, "Login successful")
		a.logger.Info("login successful")
		return nil
	case errors.Is(err, ErrAuthTimeout):
		a.tracker.Set(status.Error, "Login timed out waiting for the feed")
	default:
		a.tracker.Set(status.Error, fmt.Sprintf("Login failed: %v", err))
	}
	a.logger.Error("login failed", "error", err)
	return err
}

func (a *Authenticator) login(ctx context.Context, creds Credentials) error {
	if err := a.driver.Navigate(ctx, a.config.URL); err != nil {
		return err
	}

	if err := a.typeInto(ctx, usernameField, creds.Email); err != nil {
		return err
	}
	if err := a.typeInto(ctx, passwordField, creds.Password); err != nil {
		return err
	}
	if err := a.click(ctx, submitButton); err != nil {
		return err
	}

	a.tracker.Set(status.Running, "Checking for security challenge")
	pin, err := a.driver.WaitFor(ctx, pinField, a.config.ChallengeTimeout)
	switch {
	case err == nil:
		if err := a.answerChallenge(ctx, pin); err != nil {
			return err
		}
	case errors.Is(err, browser.ErrNotFound):
		a.tracker.Set(status.Running, "No OTP requested")
	default:
		return fmt.Errorf("check for challenge: %w", err)
	}

	return a.confirm(ctx)
}

func (a *Authenticator) answerChallenge(ctx context.Context, pin browser.Element) error {
	a.tracker.Set(status.WaitingForOTP, "LinkedIn asked for OTP. Please enter it.")
	a.logger.Info("waiting for one-time passcode")

	code, err := a.tracker.AwaitOTP(ctx, a.config.PollInterval, a.driver.Alive)
	if err != nil {
		return fmt.Errorf("waiting for OTP: %w", err)
	}

	a.tracker.Set(status.Running, "OTP received. Verifying...")
	if err := pin.SendKeys(ctx, code); err != nil {
		return fmt.Errorf("enter OTP: %w", err)
	}
	return a.click(ctx, pinSubmit)
}

// confirm waits for the browser to land on the feed.
func (a *Authenticator) confirm(ctx context.Context) error {
	deadline := time.Now().Add(a.config.ConfirmTimeout)
	for {
		url, err := a.driver.CurrentURL(ctx)
		if err != nil {
			return fmt.Errorf("read current url: %w", err)
		}
		if strings.Contains(url, "feed") {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("still at %s: %w", url, ErrAuthTimeout)
		}
		if err := a.sleep(ctx, a.config.PollInterval/2); err != nil {
			return err
		}
	}
}

func (a *Authenticator) typeInto(ctx context.Context, sel browser.Selector, value string) error {
	el, err := a.driver.WaitFor(ctx, sel, a.config.FieldTimeout)
	if err != nil {
		return fmt.Errorf("find %s: %w", sel, err)
	}
	if err := el.SendKeys(ctx, value); err != nil {
		return fmt.Errorf("type into %s: %w", sel, err)
	}
	return nil
}

func (a *Authenticator) click(ctx context.Context, sel browser.Selector) error {
	el, err := a.driver.WaitFor(ctx, sel, a.config.FieldTimeout)
	if err != nil {
		return fmt.Errorf("find %s: %w", sel, err)
	}
	if err := el.Click(ctx); err != nil {
		return fmt.Errorf("click %s: %w", sel, err)
	}
	return nil
}
