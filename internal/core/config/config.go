package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Resolution    Resolution    `toml:"resolution"`
	Parsing       Parsing       `toml:"parsing"`
	Scan          Scan          `toml:"scan"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot   string `toml:"project_root"`
	SourceRoot    string `toml:"source_root"`    // relative to project_root
	DependencyDir string `toml:"dependency_dir"` // relative to project_root
}

// Resolution drives how tag names are traced back to component files.
type Resolution struct {
	AliasPrefix      string   `toml:"alias_prefix"`
	DefaultExtension string   `toml:"default_extension"`
	AsyncFactories   []string `toml:"async_factories"`
	GlobalComponents []string `toml:"global_components"`
}

type Parsing struct {
	StrictTemplates *bool `toml:"strict_templates"`
}

type Scan struct {
	Include      []string `toml:"include"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
	Concurrency  int      `toml:"concurrency"`
	RateLimit    float64  `toml:"rate_limit"` // files per second, 0 = unlimited
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	MetricsAddress string `toml:"metrics_address"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
	ServiceName    string `toml:"service_name"`
}

// DefaultConfig returns a config for a conventional Vue project rooted at ".".
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

// FromEnv builds a config with no file: environment overrides on top of the
// defaults. PROJECT_ROOT alone is enough to point a run at a project.
func FromEnv() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		cfg.Paths.ProjectRoot = "."
	}
	if strings.TrimSpace(cfg.Paths.SourceRoot) == "" {
		cfg.Paths.SourceRoot = "src"
	}
	if strings.TrimSpace(cfg.Paths.DependencyDir) == "" {
		cfg.Paths.DependencyDir = "node_modules"
	}

	if cfg.Resolution.AliasPrefix == "" {
		cfg.Resolution.AliasPrefix = "@/"
	}
	if strings.TrimSpace(cfg.Resolution.DefaultExtension) == "" {
		cfg.Resolution.DefaultExtension = ".vue"
	}
	if !strings.HasPrefix(cfg.Resolution.DefaultExtension, ".") {
		cfg.Resolution.DefaultExtension = "." + cfg.Resolution.DefaultExtension
	}
	if len(cfg.Resolution.AsyncFactories) == 0 {
		cfg.Resolution.AsyncFactories = []string{"defineAsyncComponent"}
	}

	if len(cfg.Scan.Include) == 0 {
		cfg.Scan.Include = []string{"src/**.vue"}
	}
	if cfg.Scan.ExcludeDirs == nil {
		cfg.Scan.ExcludeDirs = []string{"node_modules", ".git", "dist"}
	}
	if cfg.Scan.Concurrency <= 0 {
		cfg.Scan.Concurrency = 8
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "vuescope"
	}
}

// StrictTemplatesEnabled reports whether template grammar errors fail a file.
func (p Parsing) StrictTemplatesEnabled() bool {
	if p.StrictTemplates == nil {
		return true
	}
	return *p.StrictTemplates
}
