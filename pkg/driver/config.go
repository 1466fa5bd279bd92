// Package driver loads project configuration and source files and checks
// many scripts at once. It sits between the command-line host and the core
// interpreter packages.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/natives"
)

// ConfigFileName is looked up from the script directory upwards.
const ConfigFileName = "lox.yml"

// Config represents the parsed contents of lox.yml.
type Config struct {
	Path         string
	Name         string
	Version      string
	Entry        string
	Interactive  bool
	Natives      []string
	MaxCallDepth int
	LogLevel     string
	Serve        ServeConfig
}

// ServeConfig configures the playground HTTP service.
type ServeConfig struct {
	Addr    string
	CacheMB int64
	Timeout time.Duration
}

// DefaultConfig is used when no lox.yml exists.
func DefaultConfig() *Config {
	return &Config{
		MaxCallDepth: interpreter.DefaultMaxCallDepth,
		LogLevel:     "info",
		Serve: ServeConfig{
			Addr:    ":8080",
			CacheMB: 64,
			Timeout: 5 * time.Second,
		},
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// ErrConfigNotFound is returned by FindConfig when no lox.yml exists between
// the start directory and the filesystem root.
var ErrConfigNotFound = errors.New("config: lox.yml not found")

// FindConfig walks up from dir looking for lox.yml.
func FindConfig(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(abs, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrConfigNotFound
		}
		abs = parent
	}
}

// LoadConfig parses lox.yml from disk, returning a validated config with
// defaults applied to omitted fields.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s is empty", absPath)
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg, issues := raw.toConfig(absPath)
	issues = append(issues, cfg.validate()...)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return cfg, nil
}

// LoadConfigFor finds and loads the config governing script, falling back to
// DefaultConfig when there is none.
func LoadConfigFor(script string) (*Config, error) {
	path, err := FindConfig(filepath.Dir(script))
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return LoadConfig(path)
}

// EntryPath resolves Entry relative to the config file.
func (c *Config) EntryPath() string {
	if c.Entry == "" || filepath.IsAbs(c.Entry) || c.Path == "" {
		return c.Entry
	}
	return filepath.Join(filepath.Dir(c.Path), c.Entry)
}

// NewInterpreter builds an interpreter honouring the config: call depth,
// interactive mode and the native allow-list.
func (c *Config) NewInterpreter(opts ...interpreter.Option) (*interpreter.Interpreter, error) {
	base := []interpreter.Option{
		interpreter.WithMaxCallDepth(c.MaxCallDepth),
		interpreter.WithInteractive(c.Interactive),
	}
	interp := interpreter.New(append(base, opts...)...)
	if err := natives.Install(interp, c.Natives...); err != nil {
		return nil, err
	}
	return interp, nil
}

var logLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {}, "fatal": {},
}

func (c *Config) validate() []string {
	var issues []string
	if c.Name == "" {
		issues = append(issues, "name must be provided")
	}
	if c.Version != "" && !semver.IsValid(canonicalVersion(c.Version)) {
		issues = append(issues, fmt.Sprintf("version %q is not a semantic version", c.Version))
	}
	if c.Entry != "" && filepath.Ext(c.Entry) != ".lox" {
		issues = append(issues, fmt.Sprintf("entry %q must be a .lox file", c.Entry))
	}
	for i, name := range c.Natives {
		if _, ok := natives.Lookup(name); !ok {
			issues = append(issues, fmt.Sprintf("natives[%d]: unknown native function %q", i, name))
		}
	}
	if c.MaxCallDepth < 1 {
		issues = append(issues, "max_call_depth must be positive")
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		issues = append(issues, fmt.Sprintf("log_level %q is not one of trace, debug, info, warn, error, fatal", c.LogLevel))
	}
	if c.Serve.CacheMB < 0 {
		issues = append(issues, "serve.cache_mb must not be negative")
	}
	if c.Serve.Timeout < 0 {
		issues = append(issues, "serve.timeout must not be negative")
	}
	return issues
}

// canonicalVersion accepts both "1.2.3" and "v1.2.3".
func canonicalVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

type configFile struct {
	Name         string     `yaml:"name"`
	Version      string     `yaml:"version"`
	Entry        string     `yaml:"entry"`
	Interactive  bool       `yaml:"interactive"`
	Natives      stringList `yaml:"natives"`
	MaxCallDepth *int       `yaml:"max_call_depth"`
	LogLevel     string     `yaml:"log_level"`
	Serve        *serveYAML `yaml:"serve"`
}

type serveYAML struct {
	Addr    string `yaml:"addr"`
	CacheMB *int64 `yaml:"cache_mb"`
	Timeout string `yaml:"timeout"`
}

// toConfig applies defaults; issues collects fields that could not be
// converted at all.
func (cf configFile) toConfig(path string) (*Config, []string) {
	var issues []string
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.Name = strings.TrimSpace(cf.Name)
	cfg.Version = strings.TrimSpace(cf.Version)
	cfg.Entry = strings.TrimSpace(cf.Entry)
	cfg.Interactive = cf.Interactive
	cfg.Natives = cf.Natives.Clone()
	if cf.MaxCallDepth != nil {
		cfg.MaxCallDepth = *cf.MaxCallDepth
	}
	if level := strings.ToLower(strings.TrimSpace(cf.LogLevel)); level != "" {
		cfg.LogLevel = level
	}
	if cf.Serve != nil {
		if addr := strings.TrimSpace(cf.Serve.Addr); addr != "" {
			cfg.Serve.Addr = addr
		}
		if cf.Serve.CacheMB != nil {
			cfg.Serve.CacheMB = *cf.Serve.CacheMB
		}
		if timeout := strings.TrimSpace(cf.Serve.Timeout); timeout != "" {
			d, err := time.ParseDuration(timeout)
			if err != nil {
				issues = append(issues, fmt.Sprintf("serve.timeout %q is not a duration", timeout))
			} else {
				cfg.Serve.Timeout = d
			}
		}
	}
	return cfg, issues
}

type stringList []string

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("config: expected string or sequence for list but found %s", value.ShortTag())
	}
}
