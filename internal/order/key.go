// Package order derives a total reading order from heterogeneous chapter
// identifiers (URLs or filenames). The same key extraction is used by the
// chapter sequencer and the filename normalizer, so both always agree.
package order

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Unset marks a component absent from the identifier. Absent components
// sort after every real value.
const Unset = math.MaxInt

// Unit-kind priorities. Lower sorts first within the same volume.
const (
	PriPrologue = 0
	PriEpisode  = 1
	PriChapter  = 2
	PriUnknown  = 3
)

type Key struct {
	Vol int
	Pri int
	Num int
}

var (
	reVolPrologue = regexp.MustCompile(`(?i)volume-(\d+)-prologue-(\d+)`)
	reVolEpisode  = regexp.MustCompile(`(?i)volume-(\d+)-episode-(\d+)`)
	reVolCh       = regexp.MustCompile(`(?i)vol(?:ume)?-(\d+)-ch-(\d+)`)
	reCh          = regexp.MustCompile(`(?i)ch-(\d+)`)

	rePlaceholderVol = regexp.MustCompile(`(?i)vol-00-ch-000`)
	rePlaceholderCh  = regexp.MustCompile(`(?i)ch-000(?:\D|$)`)
)

// ParseKey extracts the ordering key from an identifier, trying the
// recognized grammars in priority order and returning the first match.
// The second return reports whether any grammar matched; unmatched
// identifiers get an all-Unset key and sort last.
func ParseKey(id string) (Key, bool) {
	if m := reVolPrologue.FindStringSubmatch(id); m != nil {
		return Key{Vol: toInt(m[1]), Pri: PriPrologue, Num: toInt(m[2])}, true
	}
	if m := reVolEpisode.FindStringSubmatch(id); m != nil {
		return Key{Vol: toInt(m[1]), Pri: PriEpisode, Num: toInt(m[2])}, true
	}
	if m := reVolCh.FindStringSubmatch(id); m != nil {
		return Key{Vol: toInt(m[1]), Pri: PriChapter, Num: toInt(m[2])}, true
	}
	if m := reCh.FindStringSubmatch(id); m != nil {
		return Key{Vol: Unset, Pri: PriChapter, Num: toInt(m[1])}, true
	}

	return Key{Vol: Unset, Pri: PriUnknown, Num: Unset}, false
}

// Less orders keys by (volume, unit-kind priority, unit number).
// Ties are broken by the caller through a stable sort.
func (k Key) Less(o Key) bool {
	if k.Vol != o.Vol {
		return k.Vol < o.Vol
	}
	if k.Pri != o.Pri {
		return k.Pri < o.Pri
	}
	return k.Num < o.Num
}

// IsPlaceholder reports whether the identifier is an all-zero landing-page
// marker rather than a real chapter.
func IsPlaceholder(id string) bool {
	return rePlaceholderVol.MatchString(id) || rePlaceholderCh.MatchString(id)
}

// FolderName derives the canonical asset subfolder name for an identifier,
// reusing the same grammar as ParseKey.
func FolderName(id string) string {
	if m := reVolPrologue.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("volume-%d-prologue-%d", toInt(m[1]), toInt(m[2]))
	}
	if m := reVolEpisode.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("volume-%d-episode-%d", toInt(m[1]), toInt(m[2]))
	}
	if m := reVolCh.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("vol-%02d-ch-%03d", toInt(m[1]), toInt(m[2]))
	}
	if m := reCh.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("ch-%03d", toInt(m[1]))
	}

	return "unknown"
}

func toInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return Unset
	}
	return n
}
