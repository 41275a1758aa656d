package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures a local Chrome launch.
type ChromeOptions struct {
	Headless  bool
	// NoSandbox is needed when Chrome runs as root, as in most containers.
	NoSandbox bool
	ExecPath  string
	Width     int
	Height    int
}

// ChromeLauncher starts a fresh Chrome process per Launch.
type ChromeLauncher struct {
	Options ChromeOptions
	Logger  *slog.Logger
}

// Launch starts Chrome and opens a blank tab.
func (l ChromeLauncher) Launch(ctx context.Context) (Driver, error) {
	width, height := l.Options.Width, l.Options.Height
	if width == 0 || height == 0 {
		width, height = 1920, 1080
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.Options.Headless),
		chromedp.Flag("disable-notifications", true),
		chromedp.WindowSize(width, height),
	)
	if l.Options.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if l.Options.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.Options.ExecPath))
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// The session outlives the launching request; teardown happens in Close.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(func(format string, args ...interface{}) {
		logger.Debug("chromedp", "detail", fmt.Sprintf(format, args...))
	}))

	c := &Chrome{
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		logger:      logger,
	}

	if err := c.run(ctx, 0); err != nil {
		c.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	logger.Info("chrome session started", "headless", l.Options.Headless)
	return c, nil
}

// Chrome drives a Chrome tab over the DevTools protocol.
type Chrome struct {
	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	logger      *slog.Logger

	closeOnce sync.Once
}

// run executes actions on the tab, bounded by the caller's ctx and by timeout
// when it is non-zero.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(c.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(c.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, 0, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) Find(ctx context.Context, sel Selector) ([]Element, error) {
	return c.query(ctx, sel, 0, chromedp.AtLeast(0))
}

func (c *Chrome) WaitFor(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	els, err := c.query(ctx, sel, timeout)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%s: %w", sel, ErrNotFound)
		}
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%s: %w", sel, ErrNotFound)
	}
	return els[0], nil
}

func (c *Chrome) query(ctx context.Context, sel Selector, timeout time.Duration, extra ...chromedp.QueryOption) ([]Element, error) {
	var (
		expr string
		opts []chromedp.QueryOption
	)
	if css, ok := sel.css(); ok {
		expr = css
		opts = append(opts, chromedp.ByQueryAll)
	} else if xp, ok := sel.xpath(); ok {
		expr = xp
		opts = append(opts, chromedp.BySearch)
	} else {
		return nil, fmt.Errorf("%s: %w", sel, ErrUnsupported)
	}
	opts = append(opts, extra...)

	var nodes []*cdp.Node
	if err := c.run(ctx, timeout, chromedp.Nodes(expr, &nodes, opts...)); err != nil {
		return nil, err
	}

	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &chromeElement{c: c, id: n.NodeID})
	}
	return els, nil
}

// ScrollPageDown scrolls one viewport. Key events need a focusable target and
// <body> is not one.
func (c *Chrome) ScrollPageDown(ctx context.Context) error {
	var ok bool
	return c.run(ctx, 0, chromedp.Evaluate(`window.scrollBy(0, window.innerHeight); true`, &ok))
}

func (c *Chrome) ScrollToBottom(ctx context.Context) error {
	var ok bool
	return c.run(ctx, 0, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); true`, &ok))
}

func (c *Chrome) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := c.run(ctx, 0, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (c *Chrome) PageHeight(ctx context.Context) (int64, error) {
	var height int64
	if err := c.run(ctx, 0, chromedp.Evaluate(`document.body.scrollHeight`, &height)); err != nil {
		return 0, err
	}
	return height, nil
}

func (c *Chrome) Refresh(ctx context.Context) error {
	return c.run(ctx, 0, chromedp.Reload())
}

func (c *Chrome) Alive(ctx context.Context) error {
	var title string
	if err := c.run(ctx, 5*time.Second, chromedp.Title(&title)); err != nil {
		if c.ctx.Err() != nil {
			return ErrClosed
		}
		return fmt.Errorf("browser unresponsive: %w", err)
	}
	return nil
}

func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		c.tabCancel()
		c.allocCancel()
		c.logger.Info("chrome session closed")
	})
	return nil
}

type chromeElement struct {
	c  *Chrome
	id cdp.NodeID
}

// call invokes fn with this bound to the element.
func (e *chromeElement) call(ctx context.Context, fn string, res interface{}, args ...interface{}) error {
	return e.c.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.id).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node: %w", err)
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		return chromedp.CallFunctionOn(fn, res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		}, args...).Do(ctx)
	}))
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.call(ctx, `function() { return this.innerText || this.textContent || ""; }`, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (e *chromeElement) SendKeys(ctx context.Context, keys string) error {
	return e.c.run(ctx, 0, chromedp.SendKeys([]cdp.NodeID{e.id}, keys, chromedp.ByNodeID))
}

func (e *chromeElement) Click(ctx context.Context) error {
	return e.c.run(ctx, 0, chromedp.Click([]cdp.NodeID{e.id}, chromedp.ByNodeID))
}

func (e *chromeElement) ScrollIntoView(ctx context.Context) error {
	var ok bool
	return e.call(ctx, `function() { this.scrollIntoView({block: "center"}); return true; }`, &ok)
}

const closestDivJS = `function(min) {
	let el = this.parentElement;
	while (el) {
		if (el.tagName === "DIV" && (el.textContent || "").length > min) {
			return el;
		}
		el = el.parentElement;
	}
	return null;
}`

func (e *chromeElement) Closest(ctx context.Context, minChars int) (Element, error) {
	var id cdp.NodeID
	err := e.c.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.id).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node: %w", err)
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		var found *runtime.RemoteObject
		err = chromedp.CallFunctionOn(closestDivJS, &found, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		}, minChars).Do(ctx)
		if err != nil {
			return err
		}
		if found == nil || found.ObjectID == "" {
			return ErrNotFound
		}
		defer func() { _ = runtime.ReleaseObject(found.ObjectID).Do(ctx) }()

		id, err = dom.RequestNode(found.ObjectID).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return &chromeElement{c: e.c, id: id}, nil
}
