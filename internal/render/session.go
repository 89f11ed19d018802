// Package render drives a headless browser session and extracts link and
// image URLs from fully rendered pages.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

type Options struct {
	UserAgent string
	Cookie    string

	// NavTimeout bounds one whole navigation, ElementWait bounds the
	// wait for the expected page elements after load.
	NavTimeout  time.Duration
	ElementWait time.Duration

	DebugLogger interface {
		Debugf(string, ...any)
	}
}

// Session owns one headless Chrome instance. It is not safe for
// concurrent use; the pipeline runs exactly one at a time.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
}

func NewSession(parent context.Context, opts Options) (*Session, error) {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 60 * time.Second
	}
	if opts.ElementWait <= 0 {
		opts.ElementWait = 3 * time.Second
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("incognito", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, execOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:    browserCtx,
		cancel: func() { cancelBrowser(); cancelAlloc() },
		opts:   opts,
	}

	if opts.DebugLogger != nil {
		opts.DebugLogger.Debugf("Browser session created (nav timeout %s)\n", opts.NavTimeout)
	}

	return s, nil
}

// Close releases the browser and its allocator. Safe to call more than once.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Links renders the page and returns all anchor hrefs in document order,
// resolved against the page URL.
func (s *Session) Links(pageURL string) ([]string, error) {
	doc, err := s.renderDOM(pageURL, "a[href]")
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") {
			return
		}
		out = append(out, resolve(pageURL, href))
	})

	return out, nil
}

// Images renders the page and returns the sources of all image elements
// matching selector, in page order. An empty result is not an error; the
// caller decides whether to retry.
func (s *Session) Images(pageURL, selector string) ([]string, error) {
	doc, err := s.renderDOM(pageURL, selector)
	if err != nil {
		return nil, err
	}

	col := newCollector(pageURL)
	col.scan(doc, selector)

	return col.finalize(), nil
}

func (s *Session) renderDOM(pageURL, waitSelector string) (*goquery.Document, error) {
	html, err := s.outerHTML(pageURL, waitSelector)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (s *Session) outerHTML(pageURL, waitSelector string) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.opts.NavTimeout)
	defer cancel()

	tasks := []chromedp.Action{}
	if s.opts.Cookie != "" {
		headers := network.Headers{"Cookie": s.opts.Cookie}
		tasks = append(tasks,
			network.Enable(),
			chromedp.ActionFunc(func(ctx context.Context) error {
				return network.SetExtraHTTPHeaders(headers).Do(ctx)
			}),
		)
	}
	tasks = append(tasks,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
	)

	if err := chromedp.Run(ctx, tasks...); err != nil {
		return "", fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	if waitSelector != "" {
		// Bounded wait for the expected elements. Their absence is not a
		// navigation fault: the page may genuinely carry no matches, so
		// only the parent deadline is treated as an error.
		waitCtx, cancelWait := context.WithTimeout(ctx, s.opts.ElementWait)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
		cancelWait()

		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("wait %q on %s: %w", waitSelector, pageURL, err)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("render %s: %w", pageURL, ctx.Err())
		}
	}

	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("read DOM of %s: %w", pageURL, err)
	}

	if s.opts.DebugLogger != nil {
		s.opts.DebugLogger.Debugf("Rendered %s (%d bytes)\n", pageURL, len(html))
	}

	return html, nil
}
