// Package downloader materializes located image sources on disk, one
// chapter subfolder at a time.
package downloader

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/parkdl/internal/locate"
	"github.com/brogergvhs/parkdl/internal/order"
	"github.com/brogergvhs/parkdl/internal/ui"
)

// AssetError records one failed image fetch. Per-asset failures are
// skipped, never fatal for the chapter or the run.
type AssetError struct {
	Identifier string
	URL        string
	Err        error
}

type Materializer struct {
	client *http.Client
	root   string
	log    *ui.Logger
}

func New(client *http.Client, root string, log *ui.Logger) *Materializer {
	return &Materializer{
		client: client,
		root:   root,
		log:    log,
	}
}

// Materialize writes every non-empty chapter of the set into
// <root>/<canonical subfolder>/NNN.jpg, preserving list order in the
// zero-padded names. The pipeline is sequential, one image at a time.
func (m *Materializer) Materialize(ctx context.Context, set *locate.ImageSet, pm *ui.MPBProgressManager, stats *ui.Stats) []AssetError {
	var failures []AssetError

	for _, id := range set.Order {
		urls := set.Sources[id]
		if len(urls) == 0 {
			continue
		}

		name := order.FolderName(id)
		folder := filepath.Join(m.root, name)
		if err := os.MkdirAll(folder, 0755); err != nil {
			m.log.Errorf("Cannot create %s: %v\n", folder, err)
			failures = append(failures, AssetError{Identifier: id, Err: err})
			continue
		}

		handle := pm.Register(name)
		handle.SetTotal(len(urls))

		var done int
		var chapterBytes int64

		for i, u := range urls {
			if ctx.Err() != nil {
				handle.MarkDone()
				return failures
			}

			path := filepath.Join(folder, fmt.Sprintf("%03d.jpg", i))
			n, err := m.fetchWithRetry(ctx, u, path, id, func(inflight int64) {
				handle.Update(done, len(urls), chapterBytes+inflight)
			})
			if err != nil {
				m.log.Errorf("Failed to download %s: %v\n", u, err)
				failures = append(failures, AssetError{Identifier: id, URL: u, Err: err})
			} else {
				chapterBytes += n
				stats.TotalImages.Add(1)
				stats.TotalBytes.Add(n)
			}

			done++
			handle.Update(done, len(urls), chapterBytes)
		}

		handle.MarkDone()
		stats.TotalChapters.Add(1)
	}

	return failures
}

func (m *Materializer) fetchWithRetry(ctx context.Context, u, output, referer string, progress func(int64)) (int64, error) {
	var n int64
	var err error

	for attempt := 1; attempt <= 3; attempt++ {
		n, err = m.fetch(ctx, u, output, referer, progress)
		if err == nil {
			return n, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	return 0, err
}

func (m *Materializer) fetch(ctx context.Context, u, output, referer string, progress func(int64)) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("Referer", referer)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return 0, fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	var buf bytes.Buffer
	written, err := copyWithProgress(&buf, resp.Body, progress)
	if err != nil {
		return 0, err
	}

	// files are always named .jpg, so the bytes must be real JPEG
	if err := writeAsJPEG(buf.Bytes(), output); err != nil {
		return 0, err
	}

	return written, nil
}
