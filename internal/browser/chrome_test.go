package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/logging"
)

const liveFeedPage = `<!doctype html>
<html><body>
<form><input id="username"></form>
<div id="feed">
  <div class="post" style="margin-bottom: 3000px">
    <div class="body">
      <span>Shipping our new data platform today. Huge thanks to the team for months of careful work on this release.</span>
      <div class="actions">
        <button aria-label="React Like to this post">Like</button>
        <button><span>
          Comment
        </span></button>
      </div>
    </div>
  </div>
</div>
</body></html>`

// launchChrome starts a real browser on a small feed page. It needs
// TEST_CHROME_PATH pointing at a Chrome or chrome-headless-shell binary.
func launchChrome(t *testing.T) (*Chrome, context.Context) {
	t.Helper()

	execPath := os.Getenv("TEST_CHROME_PATH")
	if execPath == "" {
		t.Skip("TEST_CHROME_PATH not set - skipping Chrome driver test")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(liveFeedPage))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	launcher := ChromeLauncher{
		Options: ChromeOptions{Headless: true, NoSandbox: true, ExecPath: execPath, Width: 1280, Height: 800},
		Logger:  logging.Discard(),
	}
	d, err := launcher.Launch(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.Navigate(ctx, srv.URL+"/feed/"))

	c, ok := d.(*Chrome)
	require.True(t, ok)
	return c, ctx
}

func scrollY(t *testing.T, ctx context.Context, c *Chrome) float64 {
	t.Helper()
	var y float64
	require.NoError(t, c.run(ctx, 0, chromedp.Evaluate(`window.scrollY`, &y)))
	return y
}

func TestChromeFindAndClosest(t *testing.T) {
	c, ctx := launchChrome(t)

	els, err := c.Find(ctx, Labels("Comment", "Like"))
	require.NoError(t, err)
	require.Len(t, els, 2)

	var comment Element
	for _, el := range els {
		text, err := el.Text(ctx)
		require.NoError(t, err)
		if strings.TrimSpace(text) == "Comment" {
			comment = el
		}
	}
	require.NotNil(t, comment, "padded Comment label should match")

	container, err := comment.Closest(ctx, 100)
	require.NoError(t, err)
	text, err := container.Text(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "Shipping our new data platform")
	assert.Contains(t, text, "Comment")

	_, err = comment.Closest(ctx, 100_000)
	assert.ErrorIs(t, err, ErrNotFound)

	none, err := c.Find(ctx, ID("missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestChromeWaitFor(t *testing.T) {
	c, ctx := launchChrome(t)

	start := time.Now()
	_, err := c.WaitFor(ctx, ID("input__email_verification_pin"), 500*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Less(t, time.Since(start), 10*time.Second)

	input, err := c.WaitFor(ctx, ID("username"), 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, input.SendKeys(ctx, "me@example.com"))

	var value string
	require.NoError(t, c.run(ctx, 0, chromedp.Value("#username", &value, chromedp.ByQuery)))
	assert.Equal(t, "me@example.com", value)
}

func TestChromeScrollAndPageInfo(t *testing.T) {
	c, ctx := launchChrome(t)

	before := scrollY(t, ctx, c)
	require.NoError(t, c.ScrollPageDown(ctx))
	assert.Greater(t, scrollY(t, ctx, c), before)

	height, err := c.PageHeight(ctx)
	require.NoError(t, err)
	assert.Greater(t, height, int64(3000))

	url, err := c.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, url, "feed")

	require.NoError(t, c.Refresh(ctx))
	assert.NoError(t, c.Alive(ctx))
}

func TestChromeCloseIsIdempotent(t *testing.T) {
	c, ctx := launchChrome(t)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Alive(ctx), ErrClosed)
}
