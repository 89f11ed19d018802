package order

import "testing"

func TestParseKeyGrammars(t *testing.T) {
	cases := []struct {
		id      string
		want    Key
		matched bool
	}{
		{"https://mangapark.io/title/x/volume-2-prologue-1", Key{Vol: 2, Pri: PriPrologue, Num: 1}, true},
		{"volume-2-episode-1", Key{Vol: 2, Pri: PriEpisode, Num: 1}, true},
		{"VOLUME-3-EPISODE-12", Key{Vol: 3, Pri: PriEpisode, Num: 12}, true},
		{"https://mangapark.io/title/x/vol-01-ch-003", Key{Vol: 1, Pri: PriChapter, Num: 3}, true},
		{"volume-1-ch-5", Key{Vol: 1, Pri: PriChapter, Num: 5}, true},
		{"Vol-10-Ch-120", Key{Vol: 10, Pri: PriChapter, Num: 120}, true},
		{"ch-042", Key{Vol: Unset, Pri: PriChapter, Num: 42}, true},
		{"nothing-here", Key{Vol: Unset, Pri: PriUnknown, Num: Unset}, false},
	}

	for _, c := range cases {
		got, ok := ParseKey(c.id)
		if got != c.want || ok != c.matched {
			t.Errorf("ParseKey(%q) = %+v, %v; want %+v, %v", c.id, got, ok, c.want, c.matched)
		}
	}
}

func TestParseKeyPriorityOrder(t *testing.T) {
	// a string matching several grammars must resolve to the first one
	got, ok := ParseKey("volume-2-prologue-1-ch-9")
	if !ok || got.Pri != PriPrologue || got.Vol != 2 || got.Num != 1 {
		t.Fatalf("expected prologue grammar to win, got %+v", got)
	}
}

func TestKeyLess(t *testing.T) {
	prologue := Key{Vol: 2, Pri: PriPrologue, Num: 1}
	episode := Key{Vol: 2, Pri: PriEpisode, Num: 1}
	chapter := Key{Vol: 1, Pri: PriChapter, Num: 5}
	bare := Key{Vol: Unset, Pri: PriChapter, Num: 3}
	unknown := Key{Vol: Unset, Pri: PriUnknown, Num: Unset}

	if !chapter.Less(prologue) {
		t.Error("lower volume must sort before higher volume")
	}
	if !prologue.Less(episode) {
		t.Error("prologue must sort before episode within the same volume")
	}
	if !episode.Less(bare) {
		t.Error("volume-scoped entries must sort before bare chapters")
	}
	if !bare.Less(unknown) {
		t.Error("bare chapters must sort before unmatched identifiers")
	}
	if unknown.Less(unknown) {
		t.Error("equal keys must not be Less than each other")
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, id := range []string{"vol-00-ch-000", "ch-000", "https://x/vol-00-ch-000"} {
		if !IsPlaceholder(id) {
			t.Errorf("IsPlaceholder(%q) = false, want true", id)
		}
	}
	for _, id := range []string{"vol-01-ch-001", "ch-001", "vol-00-ch-001"} {
		if IsPlaceholder(id) {
			t.Errorf("IsPlaceholder(%q) = true, want false", id)
		}
	}
}

func TestFolderName(t *testing.T) {
	cases := []struct{ id, want string }{
		{"https://x/volume-2-prologue-1", "volume-2-prologue-1"},
		{"https://x/volume-2-episode-10", "volume-2-episode-10"},
		{"https://x/vol-1-ch-3", "vol-01-ch-003"},
		{"https://x/volume-1-ch-5", "vol-01-ch-005"},
		{"https://x/ch-42", "ch-042"},
		{"https://x/whatever", "unknown"},
	}

	for _, c := range cases {
		if got := FolderName(c.id); got != c.want {
			t.Errorf("FolderName(%q) = %q, want %q", c.id, got, c.want)
		}
	}
}
