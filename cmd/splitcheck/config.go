// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/shadeopt"
	"github.com/gogpu/shadeopt/splitcheck"
	"github.com/gogpu/shadeopt/toolchain"
)

// Toolchain kinds.
const (
	ToolchainInProcess = "inproc"
	ToolchainExec      = "exec"
)

// Config is the splitcheck run configuration.
type Config struct {
	Cases     []CaseConfig `yaml:"cases"`
	Levels    []int        `yaml:"levels"`
	Jobs      int          `yaml:"jobs"`
	Toolchain string       `yaml:"toolchain"`
	// BinDir holds hlcc, hlopt and hldis for the exec toolchain.
	BinDir string `yaml:"bin_dir"`
	// Timeout bounds one tool invocation of the exec toolchain.
	Timeout Duration `yaml:"timeout"`
}

// CaseConfig describes one source program.
type CaseConfig struct {
	Source string `yaml:"source"`
	Entry  string `yaml:"entry"`
	// Target overrides the profile declared in the source.
	Target string `yaml:"target"`
	// Levels overrides the run-wide levels for this case.
	Levels []int `yaml:"levels,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// LoadConfig loads a configuration file. Case sources are resolved
// relative to the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Cases {
		if src := cfg.Cases[i].Source; src != "" && !filepath.IsAbs(src) {
			cfg.Cases[i].Source = filepath.Join(dir, src)
		}
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from SPLITCHECK_* environment variables.
// The environment is re-read on every call.
func (c *Config) ApplyEnv() error {
	env.Load()
	if env.Has("SPLITCHECK_LEVELS") {
		levels, err := ParseLevels(env.Str("SPLITCHECK_LEVELS"))
		if err != nil {
			return fmt.Errorf("SPLITCHECK_LEVELS: %w", err)
		}
		c.Levels = levels
	}
	c.Jobs = env.Int("SPLITCHECK_JOBS", c.Jobs)
	c.Toolchain = env.Str("SPLITCHECK_TOOLCHAIN", c.Toolchain)
	c.BinDir = env.Str("SPLITCHECK_BIN_DIR", c.BinDir)
	return nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if len(c.Levels) == 0 {
		c.Levels = splitcheck.AllLevels()
	}
	if c.Jobs <= 0 {
		c.Jobs = len(c.Levels)
	}
	if c.Toolchain == "" {
		c.Toolchain = ToolchainInProcess
	}
	for i := range c.Cases {
		if c.Cases[i].Entry == "" {
			c.Cases[i].Entry = shadeopt.DefaultEntryPoint
		}
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Cases) == 0 {
		errs = append(errs, errors.New("no cases configured"))
	}
	for i, cc := range c.Cases {
		if cc.Source == "" {
			errs = append(errs, fmt.Errorf("case %d: no source", i))
		}
		if err := checkLevels(cc.Levels); err != nil {
			errs = append(errs, fmt.Errorf("case %d: %w", i, err))
		}
	}
	if err := checkLevels(c.Levels); err != nil {
		errs = append(errs, err)
	}
	switch c.Toolchain {
	case ToolchainInProcess, ToolchainExec:
	default:
		errs = append(errs, fmt.Errorf("unknown toolchain %q (want %s or %s)", c.Toolchain, ToolchainInProcess, ToolchainExec))
	}
	return errors.Join(errs...)
}

// CaseLevels returns the levels case i runs at.
func (c *Config) CaseLevels(i int) []int {
	if len(c.Cases[i].Levels) > 0 {
		return c.Cases[i].Levels
	}
	return c.Levels
}

// ParseLevels parses a comma separated level list such as "0,2,3".
func ParseLevels(s string) ([]int, error) {
	var levels []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(field), "O"))
		if err != nil {
			return nil, fmt.Errorf("invalid level %q", field)
		}
		levels = append(levels, n)
	}
	if err := checkLevels(levels); err != nil {
		return nil, err
	}
	return levels, nil
}

func checkLevels(levels []int) error {
	for _, n := range levels {
		if n < 0 || n > toolchain.MaxOptLevel {
			return fmt.Errorf("optimization level %d out of range [0, %d]", n, toolchain.MaxOptLevel)
		}
	}
	return nil
}
