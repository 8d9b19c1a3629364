package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/recera/vtc/internal/cache"
	"github.com/recera/vtc/pkg/compiler"
	"github.com/recera/vtc/pkg/compiler/dom"
)

// FileName is the project configuration file looked up by Load
const FileName = "vtc.yaml"

// Config represents the vtc.yaml configuration
type Config struct {
	// Interpolation delimiters, {{ and }} when empty
	Delimiters []string `yaml:"delimiters,omitempty"`

	// Whether to keep template comments in the output
	Comments bool `yaml:"comments"`

	// Whether to hoist static element subtrees out of render functions
	HoistStatic bool `yaml:"hoistStatic"`

	// Whether to check tree invariants before generating code
	ValidateTree bool `yaml:"validate"`

	// Global the generated code reads helpers from
	RuntimeGlobal string `yaml:"runtimeGlobal,omitempty"`

	// Directory compiled render functions are written to. Empty writes
	// them next to their templates.
	OutDir string `yaml:"outDir"`

	// Glob patterns selecting template files, matched against the file
	// name, or the slash separated relative path when the pattern has a slash
	Include []string `yaml:"include"`

	// Maximum concurrent compiles, 0 for no limit
	Jobs int `yaml:"jobs"`

	// Extra callees allowed in generated code
	Helpers []string `yaml:"helpers,omitempty"`

	// Compile cache configuration
	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// CacheConfig contains compile cache configuration
type CacheConfig struct {
	// Whether compiled artifacts are cached
	Enabled bool `yaml:"enabled"`

	// Cache directory, the user cache directory when empty
	Dir string `yaml:"dir,omitempty"`

	// Maximum cache size in bytes
	MaxSize int64 `yaml:"maxSize"`

	// Maximum entry age as a Go duration, e.g. "168h"
	MaxAge string `yaml:"maxAge"`

	// Eviction policy: lru, lfu or fifo
	Policy string `yaml:"policy,omitempty"`
}

// Load loads configuration from vtc.yaml in projectPath
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", configPath, err)
	}
	return &config, nil
}

// Save saves configuration to vtc.yaml in projectPath
func Save(config *Config, projectPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	defaults := cache.DefaultConfig()
	return &Config{
		Delimiters:  []string{"{{", "}}"},
		HoistStatic: true,
		OutDir:      "dist",
		Include:     []string{"*.vue", "*.html"},
		Cache: &CacheConfig{
			Enabled: true,
			MaxSize: defaults.MaxSize,
			MaxAge:  defaults.MaxAge.String(),
			Policy:  "lru",
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if len(config.Delimiters) == 0 {
		config.Delimiters = defaults.Delimiters
	}
	if len(config.Include) == 0 {
		config.Include = defaults.Include
	}

	if config.Cache == nil {
		config.Cache = defaults.Cache
		return
	}
	if config.Cache.MaxSize == 0 {
		config.Cache.MaxSize = defaults.Cache.MaxSize
	}
	if config.Cache.MaxAge == "" {
		config.Cache.MaxAge = defaults.Cache.MaxAge
	}
	if config.Cache.Policy == "" {
		config.Cache.Policy = defaults.Cache.Policy
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if len(c.Delimiters) != 0 {
		if len(c.Delimiters) != 2 || c.Delimiters[0] == "" || c.Delimiters[1] == "" {
			errs = append(errs, fmt.Errorf("delimiters must be an open and a close string, got %q", c.Delimiters))
		}
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}
	for _, pattern := range c.Include {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("bad include pattern %q: %w", pattern, err))
		}
	}
	if c.Cache != nil {
		if _, err := c.Cache.Config(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config converts the cache section to cache package settings
func (cc *CacheConfig) Config() (cache.Config, error) {
	config := cache.Config{Dir: cc.Dir, MaxSize: cc.MaxSize}
	if cc.MaxAge != "" {
		age, err := time.ParseDuration(cc.MaxAge)
		if err != nil {
			return config, fmt.Errorf("bad cache maxAge: %w", err)
		}
		config.MaxAge = age
	}
	policy, err := cache.ParsePolicy(cc.Policy)
	if err != nil {
		return config, fmt.Errorf("bad cache policy: %w", err)
	}
	config.Policy = policy
	return config, nil
}

// CompilerOptions returns the compile options for the DOM platform
func (c *Config) CompilerOptions() compiler.Options {
	opts := compiler.Options{Parser: dom.ParserOptions(), Validate: c.ValidateTree}
	if len(c.Delimiters) == 2 {
		opts.Parser.Delimiters = [2]string{c.Delimiters[0], c.Delimiters[1]}
	}
	opts.Parser.Comments = c.Comments
	opts.Transform.HoistStatic = c.HoistStatic
	opts.Codegen.RuntimeGlobal = c.RuntimeGlobal
	opts.Codegen.Helpers = c.Helpers
	return opts
}

// Fingerprint identifies the settings that change compiled output or the
// checks it passed. Two configs with the same fingerprint compile a template
// identically.
func (c *Config) Fingerprint() string {
	key := struct {
		Delimiters    []string `yaml:"d"`
		Comments      bool     `yaml:"c"`
		HoistStatic   bool     `yaml:"h"`
		RuntimeGlobal string   `yaml:"r"`
		Helpers       []string `yaml:"x"`
		Validate      bool     `yaml:"v"`
	}{c.Delimiters, c.Comments, c.HoistStatic, c.RuntimeGlobal, c.Helpers, c.ValidateTree}

	data, err := yaml.Marshal(key)
	if err != nil {
		return ""
	}
	return cache.Key(string(data))
}

// Matches reports whether rel, a path relative to the project root, is a
// template selected by Include
func (c *Config) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	name := rel[strings.LastIndex(rel, "/")+1:]
	for _, pattern := range c.Include {
		target := name
		if strings.Contains(pattern, "/") {
			target = rel
		}
		if ok, _ := filepath.Match(pattern, target); ok {
			return true
		}
	}
	return false
}

// Sources lists the templates under root selected by Include, skipping
// hidden directories, node_modules and OutDir
func (c *Config) Sources(root string) ([]string, error) {
	outDir := ""
	if c.OutDir != "" {
		outDir = filepath.Clean(filepath.Join(root, c.OutDir))
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && SkipDir(d.Name()) || filepath.Clean(path) == outDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if c.Matches(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find template files: %w", err)
	}
	return files, nil
}

// SkipDir reports directories never searched for templates
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// OutputPath returns where the render function compiled from source is
// written. source is relative to root.
func (c *Config) OutputPath(root, source string) string {
	rel, err := filepath.Rel(root, source)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(source)
	}
	out := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".js"
	if c.OutDir == "" {
		return filepath.Join(root, out)
	}
	return filepath.Join(root, c.OutDir, out)
}
