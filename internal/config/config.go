// Package config loads spx settings from TOML and the environment.
//
// Precedence is Env > TOML > Default. Only this package reads the
// environment; everything else receives a resolved *Config.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Output formats understood by the status reporters.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatTable    = "table"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ValidFormats lists the accepted values of output.format.
var ValidFormats = []string{FormatText, FormatJSON, FormatMarkdown, FormatTable}

// Config is the full spx configuration.
type Config struct {
	Specs    SpecsConfig    `toml:"specs" json:"specs"`
	Sessions SessionsConfig `toml:"sessions" json:"sessions"`
	Output   OutputConfig   `toml:"output" json:"output"`
	Watch    WatchConfig    `toml:"watch" json:"watch"`
}

// SpecsConfig locates the work item tree:
// {root}/{specs_root}/{work_dir}/{status_dir}.
type SpecsConfig struct {
	Root      string `toml:"root" json:"root"`
	SpecsRoot string `toml:"specs_root" json:"specs_root"`
	WorkDir   string `toml:"work_dir" json:"work_dir"`
	StatusDir string `toml:"status_dir" json:"status_dir"`
}

// SessionsConfig locates the session store.
type SessionsConfig struct {
	Dir       string `toml:"dir" json:"dir"`
	PruneKeep int    `toml:"prune_keep" json:"prune_keep"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format string `toml:"format" json:"format"`
	Color  string `toml:"color" json:"color"`
}

// WatchConfig controls `status --watch`.
type WatchConfig struct {
	Debounce string `toml:"debounce" json:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Specs: SpecsConfig{
			Root:      ".",
			SpecsRoot: "specs",
			WorkDir:   "work",
			StatusDir: "doing",
		},
		Sessions: SessionsConfig{
			Dir:       filepath.Join(".spx", "sessions"),
			PruneKeep: 5,
		},
		Output: OutputConfig{
			Format: FormatText,
			Color:  ColorAuto,
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
	}
}

// DefaultPath returns the user-level config file path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spx", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "spx", "config.toml")
}

// ProjectPath is the project-level config file, relative to the working directory.
var ProjectPath = filepath.Join(".spx", "config.toml")

// FindPath returns the config file to load: explicit if set, then
// $SPX_CONFIG, then the project file if it exists, then DefaultPath.
func FindPath(explicit string) string {
	if explicit != "" {
		return ExpandHome(explicit)
	}
	if env := os.Getenv("SPX_CONFIG"); env != "" {
		return ExpandHome(env)
	}
	if _, err := os.Stat(ProjectPath); err == nil {
		return ProjectPath
	}
	return DefaultPath()
}

// Load reads path over the defaults and applies environment overrides. An
// empty path is resolved with FindPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FindPath("")
	}

	// 1. Defaults
	cfg := Default()

	// 2. TOML over defaults
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	// 3. Environment (Env > TOML > Default)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPX_SPECS_ROOT"); v != "" {
		cfg.Specs.SpecsRoot = v
	}
	if v := os.Getenv("SPX_SESSIONS_DIR"); v != "" {
		cfg.Sessions.Dir = v
	}
	if v := os.Getenv("SPX_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("SPX_NO_COLOR"); v != "" {
		if on, err := strconv.ParseBool(v); err != nil || on {
			cfg.Output.Color = ColorNever
		}
	} else if os.Getenv("NO_COLOR") != "" {
		cfg.Output.Color = ColorNever
	}
}

// Validate checks the configuration and returns every problem found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	for _, field := range []struct{ name, value string }{
		{"specs.root", cfg.Specs.Root},
		{"specs.specs_root", cfg.Specs.SpecsRoot},
		{"specs.work_dir", cfg.Specs.WorkDir},
		{"specs.status_dir", cfg.Specs.StatusDir},
		{"sessions.dir", cfg.Sessions.Dir},
	} {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%s: must not be empty", field.name))
		}
	}

	if cfg.Sessions.PruneKeep < 0 {
		errs = append(errs, fmt.Errorf("sessions.prune_keep: must be >= 0, got %d", cfg.Sessions.PruneKeep))
	}

	if !IsValidFormat(cfg.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format: must be one of %s, got %q", strings.Join(ValidFormats, ", "), cfg.Output.Format))
	}

	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("output.color: must be \"auto\", \"always\" or \"never\", got %q", cfg.Output.Color))
	}

	if d, err := time.ParseDuration(cfg.Watch.Debounce); err != nil {
		errs = append(errs, fmt.Errorf("watch.debounce: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must be positive, got %s", cfg.Watch.Debounce))
	}

	return errs
}

// IsValidFormat reports whether format is a known output format.
func IsValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// ProjectRoot returns the expanded specs.root.
func (c *Config) ProjectRoot() string {
	return ExpandHome(c.Specs.Root)
}

// SessionsPath returns the session store directory. A relative sessions.dir
// is taken relative to the project root.
func (c *Config) SessionsPath() string {
	dir := ExpandHome(c.Sessions.Dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.ProjectRoot(), dir)
}

// DebounceDuration returns watch.debounce, falling back to 300ms when it
// does not parse.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// Print writes cfg to w as TOML.
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# spx configuration")
	fmt.Fprintln(w)
	return toml.NewEncoder(w).Encode(cfg)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
