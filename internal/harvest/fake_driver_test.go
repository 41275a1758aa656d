package harvest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/browser"
)

// fakeDriver scripts a feed: each label lookup is one scan and returns the
// container texts produced by feed for that scan number (starting at 1).
type fakeDriver struct {
	mu sync.Mutex

	feed      func(scan int) []string
	present   map[string]bool
	onClick   map[string]string // selector -> url after click
	url       string
	scans     int
	scrolls   int
	refreshes int
	navigated []string
	typed     map[string]string
	closed    bool
}

func newFakeDriver(feed func(scan int) []string) *fakeDriver {
	return &fakeDriver{
		feed:    feed,
		present: map[string]bool{"username": true, "password": true},
		onClick: map[string]string{},
		typed:   map[string]string{},
	}
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
	d.navigated = append(d.navigated, url)
	return nil
}

func (d *fakeDriver) Find(ctx context.Context, sel browser.Selector) ([]browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if sel.Kind != browser.ByLabel {
		return nil, nil
	}
	d.scans++
	var texts []string
	if d.feed != nil {
		texts = d.feed(d.scans)
	}
	els := make([]browser.Element, 0, len(texts))
	for _, t := range texts {
		els = append(els, &fakeElement{d: d, text: t})
	}
	return els, nil
}

func (d *fakeDriver) WaitFor(ctx context.Context, sel browser.Selector, timeout time.Duration) (browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch sel.Kind {
	case browser.ByQuery:
		return &fakeElement{d: d, key: sel.String()}, nil
	case browser.ByXPath:
		return &fakeElement{d: d, key: sel.String()}, nil
	case browser.ByID:
		if d.present[sel.Value] {
			return &fakeElement{d: d, key: sel.String(), id: sel.Value}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", sel, browser.ErrNotFound)
}

func (d *fakeDriver) ScrollPageDown(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrolls++
	return nil
}

func (d *fakeDriver) ScrollToBottom(ctx context.Context) error { return nil }

func (d *fakeDriver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *fakeDriver) PageHeight(ctx context.Context) (int64, error) { return 1000, nil }

func (d *fakeDriver) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshes++
	return nil
}

func (d *fakeDriver) Alive(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return browser.ErrClosed
	}
	return nil
}

func (d *fakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDriver) snapshot() (scans, scrolls, refreshes int, closed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scans, d.scrolls, d.refreshes, d.closed
}

// fakeElement is either a feed anchor (text set) or a form control (key set).
type fakeElement struct {
	d    *fakeDriver
	text string
	key  string
	id   string
}

func (e *fakeElement) Text(ctx context.Context) (string, error) { return e.text, nil }

func (e *fakeElement) SendKeys(ctx context.Context, keys string) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	e.d.typed[e.id] += keys
	return nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if url, ok := e.d.onClick[e.key]; ok {
		e.d.url = url
	}
	return nil
}

func (e *fakeElement) ScrollIntoView(ctx context.Context) error { return nil }

func (e *fakeElement) Closest(ctx context.Context, minChars int) (browser.Element, error) {
	if len(e.text) <= minChars {
		return nil, browser.ErrNotFound
	}
	return &fakeElement{d: e.d, text: e.text}, nil
}

type fakeLauncher struct {
	driver *fakeDriver
	err    error
	block  bool
}

func (l *fakeLauncher) Launch(ctx context.Context) (browser.Driver, error) {
	if l.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.driver, nil
}
