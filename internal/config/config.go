// Package config loads and validates the lastupdated configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/lastupdated/internal/history"
)

// Config represents the application configuration.
type Config struct {
	Repository RepositoryConfig `yaml:"repository"`
	Docs       DocsConfig       `yaml:"docs"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	Output     OutputConfig     `yaml:"output"`
	Cache      CacheConfig      `yaml:"cache"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Notify     NotifyConfig     `yaml:"notify"`
	Workers    int              `yaml:"workers"`
}

// RepositoryConfig locates the checkout to resolve against.
type RepositoryConfig struct {
	Dir string `yaml:"dir"`
}

// DocsConfig locates the content pages inside the checkout.
type DocsConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions,omitempty"`
}

// ResolverConfig is the effective per-file resolution bundle.
type ResolverConfig struct {
	CheckUntrackedDependencies *bool             `yaml:"check_untracked_dependencies,omitempty"`
	UntrackedShowSourcelink    bool              `yaml:"untracked_show_sourcelink"`
	ExcludePatterns            []string          `yaml:"exclude_patterns,omitempty"`
	ExcludeCommits             []string          `yaml:"exclude_commits,omitempty"`
	FirstParent                bool              `yaml:"first_parent"`
	ShowMergeCommits           bool              `yaml:"show_merge_commits"`
	ShowAuthor                 bool              `yaml:"show_author"`
	ShowAllAuthors             bool              `yaml:"show_all_authors"`
	FollowRenames              bool              `yaml:"follow_renames"`
	AuthorAliases              map[string]string `yaml:"author_aliases,omitempty"`
	SuppressWarnings           []string          `yaml:"suppress_warnings,omitempty"`
}

// CheckUntracked returns the check_untracked_dependencies setting, which
// defaults to true when omitted.
func (r *ResolverConfig) CheckUntracked() bool {
	if r.CheckUntrackedDependencies == nil {
		return true
	}
	return *r.CheckUntrackedDependencies
}

// Policy converts the bundle into a history traversal policy.
func (r *ResolverConfig) Policy() history.Policy {
	return history.Policy{
		FirstParentOnly:  r.FirstParent,
		ShowMergeCommits: r.ShowMergeCommits,
		FollowRenames:    r.FollowRenames,
	}
}

// Exclusions compiles the configured exclusion set.
func (r *ResolverConfig) Exclusions() (*history.ExclusionSet, error) {
	return history.NewExclusionSet(r.ExcludeCommits, r.ExcludePatterns)
}

// Aliases returns the author alias map.
func (r *ResolverConfig) Aliases() history.AliasMap {
	return history.AliasMap(r.AuthorAliases)
}

// Suppressed reports whether a warning kind is configured to be silenced.
func (r *ResolverConfig) Suppressed(kind history.WarningKind) bool {
	for _, s := range r.SuppressWarnings {
		if s == string(kind) {
			return true
		}
	}
	return false
}

// OutputConfig controls what the build emits.
type OutputConfig struct {
	// Manifest is the JSON manifest path.
	Manifest string `yaml:"manifest"`
	// InjectDir, when set, is a rendered-site directory whose HTML pages
	// receive article:modified_time meta tags.
	InjectDir string `yaml:"inject_dir,omitempty"`
	// Language selects the date display format (e.g. "en", "de", "zh-CN").
	Language string `yaml:"language"`
	// Timezone converts timestamps for display (IANA name).
	Timezone string `yaml:"timezone,omitempty"`
	// Metatags enables modified-time meta-tag emission.
	Metatags bool `yaml:"metatags"`
}

// CacheConfig controls the optional resolution cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DaemonConfig controls watch mode.
type DaemonConfig struct {
	RefreshInterval Duration `yaml:"refresh_interval"`
	Debounce        Duration `yaml:"debounce"`
	Listen          string   `yaml:"listen"`
}

// NotifyConfig controls optional NATS event publication.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load loads configuration from the specified file, expanding ${ENV}
// references, applying defaults, and validating.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath) // #nosec G304 - user-supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Repository.Dir == "" {
		c.Repository.Dir = "."
	}
	if c.Docs.Dir == "" {
		c.Docs.Dir = "docs"
	}
	if c.Output.Manifest == "" {
		c.Output.Manifest = "lastupdated.json"
	}
	if c.Output.Language == "" {
		c.Output.Language = "en"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		c.Cache.Path = ".lastupdated-cache.db"
	}
	if c.Daemon.RefreshInterval == 0 {
		c.Daemon.RefreshInterval = Duration(time.Hour)
	}
	if c.Daemon.Debounce == 0 {
		c.Daemon.Debounce = Duration(2 * time.Second)
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":9180"
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "lastupdated.pages"
	}
}

// Validate checks the configuration for conditions that would make a run
// meaningless rather than merely degraded.
func (c *Config) Validate() error {
	if info, err := os.Stat(c.Repository.Dir); err != nil || !info.IsDir() {
		return fmt.Errorf("repository dir is not a directory: %s", c.Repository.Dir)
	}
	for _, kind := range c.Resolver.SuppressWarnings {
		switch history.WarningKind(kind) {
		case history.WarningShallowTruncated, history.WarningDependencyNotFound:
		default:
			return fmt.Errorf("unknown warning kind in suppress_warnings: %s", kind)
		}
	}
	if c.Notify.Enabled && c.Notify.URL == "" {
		return fmt.Errorf("notify.url is required when notify is enabled")
	}
	return nil
}
