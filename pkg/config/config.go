// Package config loads AXScript settings from YAML files and the environment.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/axarion/axscript/pkg/capabilities"
)

const (
	// FileName is the project config file looked up in the working directory.
	FileName = ".axscript.yaml"
	// UserFile is the config file relative to the XDG config home.
	UserFile = "axscript/config.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "AXSCRIPT_"
)

// Config holds the settings shared by the CLI and embedding hosts.
type Config struct {
	Strict        bool          `yaml:"strict"`
	MaxIterations int64         `yaml:"max_iterations"`
	MaxCallDepth  int           `yaml:"max_call_depth"`
	Timeout       time.Duration `yaml:"timeout"`
	LogLevel      string        `yaml:"log_level"`
	ModulePaths   []string      `yaml:"module_paths"`
	Deny          []string      `yaml:"deny"`

	// Sources lists the files that contributed, highest precedence first.
	Sources []string `yaml:"-"`
}

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		MaxIterations: 1_000_000,
		MaxCallDepth:  256,
		Timeout:       10 * time.Second,
		LogLevel:      "warn",
		ModulePaths:   []string{"."},
	}
}

// Load resolves the configuration for a project directory. Precedence, high
// to low: AXSCRIPT_* variables from the process, then from dir/.env, then
// dir/.axscript.yaml, then the user config file, then Defaults.
// A file can only switch strict on; lowering it again needs the environment.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	project := filepath.Join(dir, FileName)
	if err := mergeFile(cfg, project); err != nil {
		return nil, err
	}
	if user, err := xdg.SearchConfigFile(UserFile); err == nil {
		if err := mergeFile(cfg, user); err != nil {
			return nil, err
		}
	}
	if err := mergo.Merge(cfg, Defaults()); err != nil {
		return nil, errors.Wrap(err, "merge defaults")
	}

	env, err := readEnv(filepath.Join(dir, ".env"))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a single config file without merging anything else.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	cfg.Sources = []string{path}
	return cfg, nil
}

// UserConfigPath returns where the user config file lives, whether or not it exists.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, UserFile)
}

func mergeFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	file, err := LoadFile(path)
	if err != nil {
		return err
	}
	sources := append(cfg.Sources, path)
	if err := mergo.Merge(cfg, file); err != nil {
		return errors.Wrapf(err, "merge config %s", path)
	}
	cfg.Sources = sources
	return nil
}

// readEnv collects AXSCRIPT_* settings: the .env file first, then the process
// environment on top of it.
func readEnv(dotenv string) (map[string]string, error) {
	vars := map[string]string{}
	if _, err := os.Stat(dotenv); err == nil {
		file, err := godotenv.Read(dotenv)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", dotenv)
		}
		for k, v := range file {
			if strings.HasPrefix(k, EnvPrefix) {
				vars[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			vars[k] = v
		}
	}
	return vars, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	for key, raw := range env {
		var err error
		switch strings.TrimPrefix(key, EnvPrefix) {
		case "STRICT":
			c.Strict, err = strconv.ParseBool(raw)
		case "MAX_ITERATIONS":
			c.MaxIterations, err = strconv.ParseInt(raw, 10, 64)
		case "MAX_CALL_DEPTH":
			c.MaxCallDepth, err = strconv.Atoi(raw)
		case "TIMEOUT":
			c.Timeout, err = time.ParseDuration(raw)
		case "LOG_LEVEL":
			c.LogLevel = raw
		case "MODULE_PATH":
			c.ModulePaths = filepath.SplitList(raw)
		case "DENY":
			c.Deny = splitList(raw)
		}
		if err != nil {
			return errors.Wrapf(err, "invalid %s", key)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	switch {
	case c.MaxIterations < 0:
		return errors.Errorf("max_iterations must not be negative, got %d", c.MaxIterations)
	case c.MaxCallDepth < 0:
		return errors.Errorf("max_call_depth must not be negative, got %d", c.MaxCallDepth)
	case c.Timeout < 0:
		return errors.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	_, err := c.Policy()
	return err
}

// Policy builds the capability policy from the deny list.
func (c *Config) Policy() (*capabilities.Policy, error) {
	if len(c.Deny) == 0 {
		return capabilities.AllowAll(), nil
	}
	p, err := capabilities.Deny(c.Deny...)
	if err != nil {
		return nil, errors.Wrap(err, "config deny")
	}
	return p, nil
}

// YAML renders the effective settings.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "encode config")
	}
	return string(out), nil
}
