package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output      string `yaml:"output"`
	Collection  string `yaml:"collection_folder"`
	KeepFolders bool   `yaml:"keep_folders"`
	Debug       bool   `yaml:"debug"`

	DefaultURL   string `yaml:"default_url"`
	DefaultTitle string `yaml:"default_title"`
	PageLimit    int    `yaml:"page_limit"`

	Retries        int      `yaml:"retries"`
	DelaySeconds   int      `yaml:"delay_seconds"`
	MinImages      int      `yaml:"min_images"`
	MaxImages      int      `yaml:"max_images"`
	Mirrors        []string `yaml:"mirrors"`
	MirrorFallback bool     `yaml:"mirror_fallback"`
	ImageSelector  string   `yaml:"image_selector"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	Output       string
	Collection   string
	KeepFolders  bool

	DefaultURL   string
	DefaultTitle string
	PageLimit    int

	Retries        int
	DelaySeconds   int
	MinImages      int
	MaxImages      int
	Mirrors        []string
	MirrorFallback bool
	ImageSelector  string

	Cookie     string
	CookieFile string
	UserAgent  string
}

func DefaultConfig() *Config {
	return &Config{
		Output:        ".",
		Collection:    "Manga Collection",
		Retries:       5,
		DelaySeconds:  3,
		MinImages:     10,
		MaxImages:     160,
		ImageSelector: "img.w-full.h-full",
		Mirrors: []string{
			"mangapark.io",
			"mangapark.net",
			"mangapark.com",
			"mangapark.org",
		},
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `parkdl config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Collection != "" {
		c.Collection = o.Collection
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.DefaultTitle != "" {
		c.DefaultTitle = o.DefaultTitle
	}
	if o.PageLimit != 0 {
		c.PageLimit = o.PageLimit
	}
	if o.Retries != 0 {
		c.Retries = o.Retries
	}
	if o.DelaySeconds != 0 {
		c.DelaySeconds = o.DelaySeconds
	}
	if o.MinImages != 0 {
		c.MinImages = o.MinImages
	}
	if o.MaxImages != 0 {
		c.MaxImages = o.MaxImages
	}
	if len(o.Mirrors) > 0 {
		c.Mirrors = o.Mirrors
	}
	if o.MirrorFallback {
		c.MirrorFallback = true
	}
	if o.ImageSelector != "" {
		c.ImageSelector = o.ImageSelector
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Collection == "" {
		c.Collection = "Manga Collection"
	}
	if c.Retries == 0 {
		c.Retries = 5
	}
	if c.DelaySeconds == 0 {
		c.DelaySeconds = 3
	}
	if c.MinImages == 0 {
		c.MinImages = 10
	}
	if c.MaxImages == 0 {
		c.MaxImages = 160
	}
	if c.ImageSelector == "" {
		c.ImageSelector = "img.w-full.h-full"
	}
	if len(c.Mirrors) == 0 {
		c.Mirrors = DefaultConfig().Mirrors
	}
}

func (c *Config) Print() {
	if c.Output != "" {
		fmt.Printf(" -output: %s\n", c.Output)
	}
	fmt.Printf(" -collection_folder: %s\n", c.Collection)
	fmt.Printf(" -retries: %d\n", c.Retries)
	fmt.Printf(" -delay_seconds: %d\n", c.DelaySeconds)
	fmt.Printf(" -min_images: %d\n", c.MinImages)
	fmt.Printf(" -max_images: %d\n", c.MaxImages)
	if c.MirrorFallback {
		fmt.Printf(" -mirror_fallback: %t\n", c.MirrorFallback)
		fmt.Printf(" -mirrors: %s\n", strings.Join(c.Mirrors, ", "))
	}
	if c.KeepFolders {
		fmt.Printf(" -keep_folders: %t\n", c.KeepFolders)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.DefaultURL != "" {
		fmt.Printf(" -url: %s\n", c.DefaultURL)
	}
	if c.DefaultTitle != "" {
		fmt.Printf(" -title: %s\n", c.DefaultTitle)
	}
	if c.PageLimit != 0 {
		fmt.Printf(" -page_limit: %d\n", c.PageLimit)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
}
