package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// SnapshotLauncher replays saved feed pages instead of driving a browser.
// Each scroll reveals the next page, in order.
type SnapshotLauncher struct {
	Paths []string
}

// Launch parses the first page.
func (l SnapshotLauncher) Launch(ctx context.Context) (Driver, error) {
	if len(l.Paths) == 0 {
		return nil, fmt.Errorf("snapshot launcher: no pages configured")
	}
	s := &Snapshot{paths: l.Paths}
	if err := s.load(1); err != nil {
		return nil, err
	}
	return s, nil
}

// SnapshotPaths expands a SCRAPER_SNAPSHOT_PATH value: a directory yields
// its .html files in name order, anything else is a comma-separated list.
func SnapshotPaths(location string) ([]string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, nil
	}

	if info, err := os.Stat(location); err == nil && info.IsDir() {
		paths, err := filepath.Glob(filepath.Join(location, "*.html"))
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no .html files in %s", location)
		}
		sort.Strings(paths)
		return paths, nil
	}

	var paths []string
	for _, p := range strings.Split(location, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// Snapshot is an offline Driver backed by HTML files parsed with goquery.
// XPath selectors are not supported; clicks and key presses are accepted and
// ignored.
type Snapshot struct {
	mu       sync.Mutex
	paths    []string
	pages    []*goquery.Document
	url      string
	closed   bool
	revealed int
}

// NewSnapshotFromHTML builds a snapshot from in-memory pages.
func NewSnapshotFromHTML(pages ...string) (*Snapshot, error) {
	s := &Snapshot{}
	for i, page := range pages {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
		if err != nil {
			return nil, fmt.Errorf("parse page %d: %w", i, err)
		}
		s.pages = append(s.pages, doc)
	}
	if len(s.pages) > 0 {
		s.revealed = 1
	}
	return s, nil
}

func (s *Snapshot) load(reveal int) error {
	pages := make([]*goquery.Document, 0, len(s.paths))
	for _, path := range s.paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open snapshot %s: %w", path, err)
		}
		doc, err := goquery.NewDocumentFromReader(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse snapshot %s: %w", path, err)
		}
		pages = append(pages, doc)
	}
	s.pages = pages
	s.revealed = reveal
	return nil
}

func (s *Snapshot) visible() []*goquery.Document {
	n := s.revealed
	if n > len(s.pages) {
		n = len(s.pages)
	}
	return s.pages[:n]
}

func (s *Snapshot) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.url = url
	return nil
}

func (s *Snapshot) Find(ctx context.Context, sel Selector) ([]Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var els []Element
	for _, doc := range s.visible() {
		var matched *goquery.Selection
		switch sel.Kind {
		case ByID, ByQuery:
			css, _ := sel.css()
			matched = doc.Find(css)
		case ByLabel:
			matched = doc.Find("*").FilterFunction(func(_ int, el *goquery.Selection) bool {
				return matchesLabel(el, sel.Labels)
			})
		default:
			return nil, fmt.Errorf("%s: %w", sel, ErrUnsupported)
		}
		matched.Each(func(_ int, el *goquery.Selection) {
			els = append(els, snapshotElement{sel: el})
		})
	}
	return els, nil
}

// matchesLabel mirrors the label XPath: a direct text node whose
// whitespace-normalized value equals a label, or an aria-label containing one.
func matchesLabel(el *goquery.Selection, labels []string) bool {
	aria, hasAria := el.Attr("aria-label")
	for _, label := range labels {
		if hasAria && strings.Contains(aria, label) {
			return true
		}
	}

	for _, n := range el.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.TextNode {
				continue
			}
			text := strings.Join(strings.Fields(c.Data), " ")
			for _, label := range labels {
				if text == label {
					return true
				}
			}
		}
	}
	return false
}

func (s *Snapshot) WaitFor(ctx context.Context, sel Selector, _ time.Duration) (Element, error) {
	els, err := s.Find(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%s: %w", sel, ErrNotFound)
	}
	return els[0], nil
}

func (s *Snapshot) ScrollPageDown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.revealed < len(s.pages) {
		s.revealed++
	}
	return nil
}

func (s *Snapshot) ScrollToBottom(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.revealed = len(s.pages)
	return nil
}

func (s *Snapshot) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	return s.url, nil
}

// PageHeight reports the number of revealed pages.
func (s *Snapshot) PageHeight(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return int64(s.revealed), nil
}

// Refresh re-reads file-backed pages and returns to the first page.
func (s *Snapshot) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.paths) > 0 {
		return s.load(1)
	}
	s.revealed = 1
	return nil
}

func (s *Snapshot) Alive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Snapshot) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

type snapshotElement struct {
	sel *goquery.Selection
}

func (e snapshotElement) Text(ctx context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e snapshotElement) SendKeys(ctx context.Context, keys string) error { return nil }

func (e snapshotElement) Click(ctx context.Context) error { return nil }

func (e snapshotElement) ScrollIntoView(ctx context.Context) error { return nil }

func (e snapshotElement) Closest(ctx context.Context, minChars int) (Element, error) {
	var found *goquery.Selection
	e.sel.ParentsFiltered("div").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if utf8.RuneCountInString(p.Text()) > minChars {
			found = p
			return false
		}
		return true
	})
	if found == nil {
		return nil, ErrNotFound
	}
	return snapshotElement{sel: found}, nil
}
