package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/recera/compilemode/pkg/compiler"
)

// FileName is the project configuration file.
const FileName = "compilemode.yaml"

// legacyFileName is read when no YAML configuration exists.
const legacyFileName = "compilemode.json"

// Config represents the compilemode.yaml configuration
type Config struct {
	// Target platform: weapp, alipay, swan, tt, qq, jd or harmony
	Platform string `yaml:"platform" json:"platform"`

	// Prefix of dynamic node ids
	NamePrefix string `yaml:"namePrefix,omitempty" json:"namePrefix,omitempty"`

	// Control-flow keyword to template attribute, e.g. if: wx:if.
	// Missing keywords are filled from the platform defaults.
	Adapter map[string]string `yaml:"adapter,omitempty" json:"adapter,omitempty"`

	// Built-in component tags, in kebab-case
	Components []string `yaml:"components,omitempty" json:"components,omitempty"`

	// Per-component style snippets
	ComponentStyles map[string]string `yaml:"componentStyles,omitempty" json:"componentStyles,omitempty"`

	// Built-ins replaced by custom dependencies
	ComponentReplace map[string]compiler.ComponentReplace `yaml:"componentReplace,omitempty" json:"componentReplace,omitempty"`

	// Script module aliases known in every file
	XSModules []string `yaml:"xsModules,omitempty" json:"xsModules,omitempty"`

	// Source selection
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// Output directory; empty writes next to the sources
	OutDir string `yaml:"outDir,omitempty" json:"outDir,omitempty"`

	// Template file extension
	TemplateExt string `yaml:"templateExt,omitempty" json:"templateExt,omitempty"`

	// Build cache configuration
	Cache *CacheConfig `yaml:"cache,omitempty" json:"cache,omitempty"`

	// Preview server configuration
	Serve *ServeConfig `yaml:"serve,omitempty" json:"serve,omitempty"`
}

// CacheConfig contains build cache configuration
type CacheConfig struct {
	// Whether the cache is used
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Cache directory, relative to the project
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`

	// Maximum cache size in megabytes
	MaxSizeMB int64 `yaml:"maxSizeMB,omitempty" json:"maxSizeMB,omitempty"`
}

// ServeConfig contains preview server configuration
type ServeConfig struct {
	// Server port
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// Server host
	Host string `yaml:"host,omitempty" json:"host,omitempty"`
}

// Load loads configuration from compilemode.yaml, falling back to
// compilemode.json. A project without either gets the defaults.
func Load(projectPath string) (*Config, error) {
	config := &Config{}

	configPath := filepath.Join(projectPath, FileName)
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		legacyPath := filepath.Join(projectPath, legacyFileName)
		data, err := os.ReadFile(legacyPath)
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", legacyPath, err)
		}
	default:
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves configuration to compilemode.yaml
func Save(config *Config, projectPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	defaults := compiler.DefaultConfig()

	components := make([]string, 0, len(defaults.Components))
	for tag := range defaults.Components {
		components = append(components, tag)
	}
	sort.Strings(components)

	return &Config{
		Platform:    string(defaults.Platform),
		NamePrefix:  defaults.NamePrefix,
		Adapter:     map[string]string(defaults.Adapter),
		Components:  components,
		XSModules:   defaults.XSModules,
		Include:     []string{"**/*.jsx", "**/*.tsx"},
		Exclude:     []string{"node_modules/**", "dist/**"},
		TemplateExt: ".wxml",
		Cache: &CacheConfig{
			Enabled:   true,
			Dir:       ".compilemode/cache",
			MaxSizeMB: 64,
		},
		Serve: &ServeConfig{
			Port: 8090,
			Host: "localhost",
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Platform == "" {
		config.Platform = defaults.Platform
	}
	if config.NamePrefix == "" {
		config.NamePrefix = defaults.NamePrefix
	}

	// Adapter entries default per platform, so a partial adapter only
	// overrides what it names
	if p, err := compiler.ParsePlatform(config.Platform); err == nil {
		if config.Adapter == nil {
			config.Adapter = make(map[string]string)
		}
		// the legacy "key" spelling wins over the platform's for-key
		if v, ok := config.Adapter["key"]; ok {
			if _, set := config.Adapter[compiler.KeywordForKey]; !set {
				config.Adapter[compiler.KeywordForKey] = v
			}
		}
		for k, v := range compiler.DefaultAdapter(p) {
			if _, ok := config.Adapter[k]; !ok {
				config.Adapter[k] = v
			}
		}
	}

	if len(config.Components) == 0 {
		config.Components = defaults.Components
	}
	if config.XSModules == nil {
		config.XSModules = defaults.XSModules
	}
	if len(config.Include) == 0 {
		config.Include = defaults.Include
	}
	if config.Exclude == nil {
		config.Exclude = defaults.Exclude
	}
	if config.TemplateExt == "" {
		config.TemplateExt = defaults.TemplateExt
	}

	if config.Cache == nil {
		config.Cache = defaults.Cache
	} else {
		if config.Cache.Dir == "" {
			config.Cache.Dir = defaults.Cache.Dir
		}
		if config.Cache.MaxSizeMB == 0 {
			config.Cache.MaxSizeMB = defaults.Cache.MaxSizeMB
		}
	}

	if config.Serve == nil {
		config.Serve = defaults.Serve
	} else {
		if config.Serve.Port == 0 {
			config.Serve.Port = defaults.Serve.Port
		}
		if config.Serve.Host == "" {
			config.Serve.Host = defaults.Serve.Host
		}
	}
}

// SetPlatform switches the target platform. The adapter is reset to the
// platform's defaults.
func (c *Config) SetPlatform(name string) error {
	p, err := compiler.ParsePlatform(name)
	if err != nil {
		return err
	}
	c.Platform = string(p)
	c.Adapter = map[string]string(compiler.DefaultAdapter(p))
	return nil
}

var adapterKeywords = map[string]bool{
	compiler.KeywordIf:     true,
	compiler.KeywordElse:   true,
	compiler.KeywordFor:    true,
	compiler.KeywordForKey: true,
	"key":                  true,
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := compiler.ParsePlatform(c.Platform); err != nil {
		return err
	}
	for k := range c.Adapter {
		if !adapterKeywords[k] {
			return compiler.NewError(compiler.PhaseConfig, compiler.KindInvalidConfig).
				Path("adapter", k).
				Detail("unknown control-flow keyword").
				Build()
		}
	}
	for tag := range c.ComponentReplace {
		if !c.hasComponent(tag) {
			return compiler.NewError(compiler.PhaseConfig, compiler.KindInvalidConfig).
				Path("componentReplace", tag).
				Detail("replaced component is not declared in components").
				Build()
		}
	}
	for _, pattern := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return compiler.NewError(compiler.PhaseConfig, compiler.KindInvalidConfig).
				Path("include", pattern).
				Detail("invalid glob pattern").
				Build()
		}
	}
	return nil
}

func (c *Config) hasComponent(tag string) bool {
	for _, t := range c.Components {
		if t == tag {
			return true
		}
	}
	return false
}

// CompilerConfig converts the file configuration into the compiler's.
func (c *Config) CompilerConfig() (*compiler.Config, error) {
	platform, err := compiler.ParsePlatform(c.Platform)
	if err != nil {
		return nil, err
	}

	components := make(map[string]compiler.ComponentDecl, len(c.Components))
	for _, tag := range c.Components {
		decl := compiler.ComponentDecl{Inner: true, Style: c.ComponentStyles[tag]}
		if r, ok := c.ComponentReplace[tag]; ok {
			r := r
			decl.Replace = &r
		}
		components[tag] = decl
	}

	adapter := make(compiler.Adapter, len(c.Adapter))
	for k, v := range c.Adapter {
		adapter[k] = v
	}

	return &compiler.Config{
		Platform:   platform,
		Adapter:    adapter,
		Components: components,
		NamePrefix: c.NamePrefix,
		XSModules:  append([]string(nil), c.XSModules...),
	}, nil
}

// Hash fingerprints everything that influences compiler output. Cached
// results are only reused under the same hash.
func (c *Config) Hash() string {
	data, err := json.Marshal(struct {
		Platform         string
		NamePrefix       string
		Adapter          map[string]string
		Components       []string
		ComponentStyles  map[string]string
		ComponentReplace map[string]compiler.ComponentReplace
		XSModules        []string
	}{c.Platform, c.NamePrefix, c.Adapter, c.Components, c.ComponentStyles, c.ComponentReplace, c.XSModules})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// MatchSource reports whether a project-relative path is a source file the
// configuration selects.
func (c *Config) MatchSource(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range c.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
