package project

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"jopa/internal/sema"
	"jopa/internal/trace"
)

// ErrUnknownKey is wrapped when jopa.toml carries keys nothing reads.
var ErrUnknownKey = errors.New("unknown configuration key")

// Config is the content of jopa.toml. Zero sections take Default values.
type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path    string        `toml:"-"`
	Resolve ResolveConfig `toml:"resolve"`
	Run     RunConfig     `toml:"run"`
	Output  OutputConfig  `toml:"output"`
	Trace   TraceConfig   `toml:"trace"`
}

// ResolveConfig holds the resolver switches.
type ResolveConfig struct {
	Source      string `toml:"source"`
	Deprecation bool   `toml:"deprecation"`
	Pedantic    bool   `toml:"pedantic"`
}

// RunConfig controls how fixtures are processed.
type RunConfig struct {
	// Jobs bounds parallel fixture files; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
	// CacheDir enables the result cache when set.
	CacheDir   string `toml:"cache_dir"`
	MetricsOut string `toml:"metrics_out"`
}

// OutputConfig selects the diagnostics renderer.
type OutputConfig struct {
	Format string `toml:"format"`
	// Color is auto, on or off.
	Color string `toml:"color"`
}

// TraceConfig configures the structured tracer.
type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

var (
	outputFormats = []string{"pretty", "json", "short"}
	colorModes    = []string{"auto", "on", "off"}
)

// Default returns the configuration used when no jopa.toml is found.
func Default() Config {
	return Config{
		Resolve: ResolveConfig{Source: "1.5", Deprecation: true},
		Output:  OutputConfig{Format: "pretty", Color: "auto"},
		Trace:   TraceConfig{Level: "off", Format: "text"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	if meta.IsDefined("resolve", "source") && strings.TrimSpace(cfg.Resolve.Source) == "" {
		return Config{}, fmt.Errorf("%s: [resolve].source must not be empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the jopa.toml above startDir, or returns Default when
// there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks every enumerated value.
func (c *Config) Validate() error {
	if _, err := sema.ParseSourceLevel(c.Resolve.Source); err != nil {
		return fmt.Errorf("[resolve].source: %w", err)
	}
	if c.Run.Jobs < 0 {
		return fmt.Errorf("[run].jobs must not be negative, got %d", c.Run.Jobs)
	}
	if !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("[output].format must be one of %s, got %q", strings.Join(outputFormats, "|"), c.Output.Format)
	}
	if !slices.Contains(colorModes, c.Output.Color) {
		return fmt.Errorf("[output].color must be one of %s, got %q", strings.Join(colorModes, "|"), c.Output.Color)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		return fmt.Errorf("[trace].format: %w", err)
	}
	return nil
}

// ResolverOptions converts the [resolve] section.
func (c *Config) ResolverOptions() sema.Options {
	level, err := sema.ParseSourceLevel(c.Resolve.Source)
	if err != nil {
		level = sema.Source15
	}
	return sema.Options{
		Source:      level,
		Deprecation: c.Resolve.Deprecation,
		Pedantic:    c.Resolve.Pedantic,
	}
}

// Fingerprint folds the settings that change resolution output into a
// digest for cache keys.
func (c *Config) Fingerprint() Digest {
	o := c.ResolverOptions()
	return DigestString(fmt.Sprintf("source=%s;deprecation=%t;pedantic=%t", o.Source, o.Deprecation, o.Pedantic))
}
