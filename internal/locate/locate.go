// Package locate turns an ordered list of chapter identifiers into image
// source lists, retrying across renderer faults and alternate mirror hosts.
package locate

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Error codes recorded during location. Failures never abort the run; the
// affected chapter gets an empty entry instead.
const (
	CodeNoImages     = "NO_IMAGES_FOUND"
	CodeInsufficient = "INSUFFICIENT_IMAGES"
	CodePageLoad     = "PAGE_LOAD_ERROR"
)

type ErrorRecord struct {
	Identifier string
	Code       string
	Detail     string
}

// ImageSet maps every input identifier to its located image sources,
// keeping the identifier order explicit. Failed chapters hold an empty
// slice so downstream stages stay total over the key set.
type ImageSet struct {
	Order   []string
	Sources map[string][]string
}

func NewImageSet() *ImageSet {
	return &ImageSet{Sources: make(map[string][]string)}
}

func (s *ImageSet) Put(id string, urls []string) {
	if _, ok := s.Sources[id]; !ok {
		s.Order = append(s.Order, id)
	}
	s.Sources[id] = urls
}

// Renderer is the page-renderer capability consumed by the locator.
type Renderer interface {
	Links(pageURL string) ([]string, error)
	Images(pageURL, selector string) ([]string, error)
	Close()
}

// SessionFactory creates a fresh renderer session. The locator assumes a
// faulted session is corrupted and replaces it through this factory.
type SessionFactory func() (Renderer, error)

type Locator struct {
	NewSession SessionFactory

	Retries   int           // attempts per chapter, default 5
	Delay     time.Duration // blocking pause between attempts, default 3s
	MinImages int           // mirror-mode acceptance threshold, default 10
	MaxImages int           // per-chapter source cap, default 160
	Selector  string        // page image selector, default "img.w-full.h-full"
	Mirrors   []string      // alternate hosts tried in order, mirror mode only

	Log interface {
		Debugf(string, ...any)
		Infof(string, ...any)
		Errorf(string, ...any)
	}

	mu  sync.Mutex
	cur Renderer
}

func (l *Locator) defaults() {
	if l.Retries <= 0 {
		l.Retries = 5
	}
	if l.Delay <= 0 {
		l.Delay = 3 * time.Second
	}
	if l.MinImages <= 0 {
		l.MinImages = 10
	}
	if l.MaxImages <= 0 {
		l.MaxImages = 160
	}
	if l.Selector == "" {
		l.Selector = "img.w-full.h-full"
	}
}

// session returns the live renderer, creating one when none exists.
// Exactly one session is live at a time.
func (l *Locator) session() (Renderer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cur == nil {
		r, err := l.NewSession()
		if err != nil {
			return nil, err
		}
		l.cur = r
	}
	return l.cur, nil
}

// CloseSession releases the live renderer session, if any. A faulted
// session is assumed corrupted and discarded through this; it is also the
// hook for interrupt handlers so the browser never outlives the run.
func (l *Locator) CloseSession() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cur != nil {
		l.cur.Close()
		l.cur = nil
	}
}

// Locate runs single-source mode: each identifier is rendered at most
// Retries times at its own URL. Every identifier ends up in the returned
// set, failed ones with an empty list and an error record.
func (l *Locator) Locate(ctx context.Context, ids []string, pageLimit int) (*ImageSet, []ErrorRecord, error) {
	return l.run(ctx, ids, pageLimit, l.locateSingle)
}

// LocateMirrors runs mirror-fallback mode: one exhaustive sweep across the
// configured mirror hosts, accepting the first mirror that yields at least
// MinImages sources. A completed sweep below the threshold is terminal for
// that chapter; only renderer faults consume further attempts.
func (l *Locator) LocateMirrors(ctx context.Context, ids []string, pageLimit int) (*ImageSet, []ErrorRecord, error) {
	return l.run(ctx, ids, pageLimit, l.locateMirrorSweep)
}

type chapterFn func(ctx context.Context, id string) ([]string, *ErrorRecord, error)

func (l *Locator) run(ctx context.Context, ids []string, pageLimit int, fn chapterFn) (*ImageSet, []ErrorRecord, error) {
	l.defaults()

	defer l.CloseSession()

	set := NewImageSet()
	var errLog []ErrorRecord
	processed := 0

	for _, id := range ids {
		if pageLimit > 0 && processed >= pageLimit {
			l.Log.Infof("Page limit of %d reached, stopping.\n", pageLimit)
			break
		}
		if err := ctx.Err(); err != nil {
			return set, errLog, err
		}

		l.Log.Infof("Checking %s\n", id)
		urls, rec, err := fn(ctx, id)
		if err != nil {
			// context cancelled or session factory broken; the partial
			// result is still returned
			return set, errLog, err
		}

		if rec != nil {
			errLog = append(errLog, *rec)
			set.Put(id, nil)
			continue
		}

		if len(urls) > l.MaxImages {
			urls = urls[:l.MaxImages]
		}
		set.Put(id, urls)
		processed++
	}

	return set, errLog, nil
}

func (l *Locator) locateSingle(ctx context.Context, id string) ([]string, *ErrorRecord, error) {
	var lastErr error

	for left := l.Retries; left > 0; left-- {
		r, err := l.session()
		if err != nil {
			return nil, nil, fmt.Errorf("renderer session: %w", err)
		}

		urls, err := r.Images(id, l.Selector)
		if err != nil {
			lastErr = err
			l.Log.Errorf("Render failed for %s: %v\n", id, err)
			l.CloseSession()
			if left > 1 {
				if err := l.pause(ctx); err != nil {
					return nil, nil, err
				}
			}
			continue
		}

		if len(urls) == 0 {
			lastErr = nil
			l.Log.Infof("No images on %s, %d retries left\n", id, left-1)
			if left > 1 {
				if err := l.pause(ctx); err != nil {
					return nil, nil, err
				}
			}
			continue
		}

		l.Log.Infof("Found %d images on %s\n", len(urls), id)
		return urls, nil, nil
	}

	if lastErr != nil {
		return nil, &ErrorRecord{Identifier: id, Code: CodePageLoad, Detail: lastErr.Error()}, nil
	}
	return nil, &ErrorRecord{Identifier: id, Code: CodeNoImages}, nil
}

func (l *Locator) locateMirrorSweep(ctx context.Context, id string) ([]string, *ErrorRecord, error) {
	var lastErr error

	for left := l.Retries; left > 0; left-- {
		r, err := l.session()
		if err != nil {
			return nil, nil, fmt.Errorf("renderer session: %w", err)
		}

		urls, err := l.sweep(r, id)
		if err != nil {
			lastErr = err
			l.Log.Errorf("Mirror sweep failed for %s: %v\n", id, err)
			l.CloseSession()
			if left > 1 {
				if perr := l.pause(ctx); perr != nil {
					return nil, nil, perr
				}
			}
			continue
		}

		if urls != nil {
			return urls, nil, nil
		}

		// the sweep completed and no mirror met the threshold; that is
		// terminal, remaining attempts are not spent on the same answer
		return nil, &ErrorRecord{Identifier: id, Code: CodeInsufficient}, nil
	}

	return nil, &ErrorRecord{Identifier: id, Code: CodePageLoad, Detail: lastErr.Error()}, nil
}

// maxMirrors bounds one sweep; extra configured hosts are ignored.
const maxMirrors = 4

// sweep tries each mirror in order and returns the first list meeting the
// threshold. A renderer fault aborts the sweep so the session can be
// replaced; mirrors already tried are discarded, not merged.
func (l *Locator) sweep(r Renderer, id string) ([]string, error) {
	hosts := l.Mirrors
	if len(hosts) > maxMirrors {
		hosts = hosts[:maxMirrors]
	}

	for _, host := range hosts {
		u := mirrorURL(id, host)
		urls, err := r.Images(u, l.Selector)
		if err != nil {
			return nil, fmt.Errorf("mirror %s: %w", host, err)
		}

		if len(urls) >= l.MinImages {
			l.Log.Infof("Mirror %s yielded %d images for %s\n", host, len(urls), id)
			return urls, nil
		}

		l.Log.Debugf("Mirror %s yielded %d images (< %d), trying next\n", host, len(urls), l.MinImages)
	}

	return nil, nil
}

// pause is the fixed inter-attempt delay. It aborts early when the run is
// interrupted.
func (l *Locator) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(l.Delay):
		return nil
	}
}

// mirrorURL substitutes the host of an identifier URL with an alternate
// mirror host. Non-URL identifiers are passed through unchanged.
func mirrorURL(id, host string) string {
	u, err := url.Parse(id)
	if err != nil || u.Host == "" {
		return id
	}

	u.Host = host
	return u.String()
}
