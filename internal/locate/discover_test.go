package locate

import (
	"errors"
	"reflect"
	"testing"
)

type linksRenderer struct {
	links []string
	err   error
}

func (l *linksRenderer) Links(string) ([]string, error)          { return l.links, l.err }
func (l *linksRenderer) Images(string, string) ([]string, error) { return nil, nil }
func (l *linksRenderer) Close()                                  {}

func TestDiscoverFiltersAndDedupes(t *testing.T) {
	r := &linksRenderer{links: []string{
		"https://mangapark.io/title/one-piece/vol-01-ch-001",
		"https://mangapark.io/title/one-piece/vol-01-ch-001", // duplicate
		"https://mangapark.io/title/one-piece/about",         // no chapter marker
		"https://mangapark.io/title/other-series/vol-05-ch-050",
		"https://mangapark.io/title/One-Piece/CH-002",
		"https://mangapark.io/static/logo.png",
	}}

	got, err := Discover(r, "https://mangapark.io/title/one-piece", "one-piece", 0)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{
		"https://mangapark.io/title/one-piece/vol-01-ch-001",
		"https://mangapark.io/title/One-Piece/CH-002",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover = %v, want %v", got, want)
	}
}

func TestDiscoverHonorsLimit(t *testing.T) {
	r := &linksRenderer{links: []string{
		"https://x/one/ch-001",
		"https://x/one/ch-002",
		"https://x/one/ch-003",
	}}

	got, err := Discover(r, "https://x/one", "one", 2)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d links, want 2", len(got))
	}
}

func TestDiscoverPropagatesRenderError(t *testing.T) {
	r := &linksRenderer{err: errors.New("navigation timeout")}
	if _, err := Discover(r, "https://x/one", "one", 0); err == nil {
		t.Fatal("expected an error from a failed listing render")
	}
}
