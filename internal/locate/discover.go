package locate

import (
	"fmt"
	"strings"
)

// Discover renders the title's listing page and returns the chapter links
// mentioning the title, in page order and deduplicated. A positive limit
// caps the number of links returned.
func Discover(r Renderer, pageURL, title string, limit int) ([]string, error) {
	links, err := r.Links(pageURL)
	if err != nil {
		return nil, fmt.Errorf("discover chapters on %s: %w", pageURL, err)
	}

	want := strings.ToLower(title)
	seen := make(map[string]bool)
	var out []string

	for _, href := range links {
		lh := strings.ToLower(href)
		if want != "" && !strings.Contains(lh, want) {
			continue
		}
		if !strings.Contains(lh, "vol") && !strings.Contains(lh, "ch") {
			continue
		}
		if seen[href] {
			continue
		}

		seen[href] = true
		out = append(out, href)

		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out, nil
}
