package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Output = "/tmp/manga"
	cfg.MirrorFallback = true
	cfg.Mirrors = []string{"mangapark.io", "mangapark.net"}

	if err := SaveYAML(cfg, path); err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}

	got, err := loadYAML(path)
	if err != nil {
		t.Fatalf("loadYAML: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip changed config:\ngot  %+v\nwant %+v", got, cfg)
	}
}

func TestMergeConfigFlagOverrides(t *testing.T) {
	cfg := DefaultConfig()
	mergeConfig(cfg, Options{
		Output:         "/data",
		Retries:        9,
		MirrorFallback: true,
		Mirrors:        []string{"mangapark.org"},
		ImageSelector:  "img.page",
	})

	if cfg.Output != "/data" {
		t.Errorf("Output = %q, want /data", cfg.Output)
	}
	if cfg.Retries != 9 {
		t.Errorf("Retries = %d, want 9", cfg.Retries)
	}
	if !cfg.MirrorFallback {
		t.Error("MirrorFallback must be set")
	}
	if !reflect.DeepEqual(cfg.Mirrors, []string{"mangapark.org"}) {
		t.Errorf("Mirrors = %v", cfg.Mirrors)
	}
	if cfg.ImageSelector != "img.page" {
		t.Errorf("ImageSelector = %q", cfg.ImageSelector)
	}

	// zero-value options must not clobber existing settings
	before := cfg.Retries
	mergeConfig(cfg, Options{})
	if cfg.Retries != before {
		t.Errorf("empty options changed Retries to %d", cfg.Retries)
	}
}

func TestNormalizeDefaultsFillsGaps(t *testing.T) {
	cfg := &Config{}
	normalizeDefaults(cfg)

	if cfg.Retries != 5 || cfg.DelaySeconds != 3 || cfg.MinImages != 10 || cfg.MaxImages != 160 {
		t.Errorf("numeric defaults wrong: %+v", cfg)
	}
	if cfg.ImageSelector != "img.w-full.h-full" {
		t.Errorf("ImageSelector = %q", cfg.ImageSelector)
	}
	if cfg.Collection != "Manga Collection" {
		t.Errorf("Collection = %q", cfg.Collection)
	}
	if len(cfg.Mirrors) == 0 {
		t.Error("Mirrors must default to the known hosts")
	}
}
