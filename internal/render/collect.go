package render

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reImageExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|gif)(\?|$)`)

type candidate struct {
	URL   string
	Index int // data-index when present, -1 otherwise
	Order int // discovery order
}

// collector accumulates image sources from a rendered document, dropping
// duplicates and obvious non-page assets.
type collector struct {
	pageURL string
	items   []candidate
	seen    map[string]bool
	counter int
}

func newCollector(pageURL string) *collector {
	return &collector{
		pageURL: pageURL,
		items:   make([]candidate, 0, 64),
		seen:    make(map[string]bool),
	}
}

func (c *collector) add(raw string, idx int) {
	if raw == "" || strings.HasPrefix(raw, "javascript:") || strings.HasPrefix(raw, "data:") {
		return
	}

	u := resolve(c.pageURL, raw)
	lu := strings.ToLower(u)
	if !reImageExt.MatchString(lu) {
		return
	}
	if strings.Contains(lu, "logo") ||
		strings.Contains(lu, "cover") ||
		strings.Contains(lu, "avatar") ||
		strings.Contains(lu, "banner") {
		return
	}
	if c.seen[u] {
		return
	}

	c.seen[u] = true
	c.counter++
	c.items = append(c.items, candidate{URL: u, Index: idx, Order: c.counter})
}

// scan collects sources from elements matching selector, preferring the
// lazy-load attributes sites hide real page URLs behind.
func (c *collector) scan(doc *goquery.Document, selector string) {
	doc.Find(selector).Each(func(_ int, img *goquery.Selection) {
		idx := indexFor(img)

		for _, k := range []string{"src", "data-src", "data-lazy-src", "data-original"} {
			if v, ok := img.Attr(k); ok && strings.TrimSpace(v) != "" {
				c.add(strings.TrimSpace(v), idx)
			}
		}

		if ss, ok := img.Attr("srcset"); ok {
			for part := range strings.SplitSeq(ss, ",") {
				fields := strings.Fields(strings.TrimSpace(part))
				if len(fields) > 0 {
					c.add(fields[0], idx)
				}
			}
		}
	})
}

// finalize orders candidates: explicit data-index first, then discovery
// order among the unindexed.
func (c *collector) finalize() []string {
	if len(c.items) == 0 {
		return nil
	}

	sort.SliceStable(c.items, func(i, j int) bool {
		ai, aj := c.items[i].Index, c.items[j].Index
		if ai >= 0 && aj >= 0 && ai != aj {
			return ai < aj
		}
		if ai >= 0 && aj < 0 {
			return true
		}
		if ai < 0 && aj >= 0 {
			return false
		}
		return c.items[i].Order < c.items[j].Order
	})

	out := make([]string, len(c.items))
	for i := range c.items {
		out[i] = c.items[i].URL
	}

	return out
}

func indexFor(sel *goquery.Selection) int {
	if v, ok := sel.Attr("data-index"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}

	p := sel.ParentsFiltered("[data-index]").First()
	if p.Length() > 0 {
		if v, ok := p.Attr("data-index"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}

	return -1
}

func resolve(baseURL, href string) string {
	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil || u == nil {
		return href
	}

	return b.ResolveReference(u).String()
}
