package util

import "testing"

func TestSafeFolderName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"One Piece", "one_piece"},
		{"Dr. STONE", "dr_stone"},
		{"Steins;Gate (Manga)", "steinsgate_manga"},
		{"Re:Zero — Starting Life", "rezero_starting_life"},
		{"__already__clean__", "already_clean"},
		{"", ""},
	}

	for _, c := range cases {
		if got := SafeFolderName(c.in); got != c.want {
			t.Errorf("SafeFolderName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
