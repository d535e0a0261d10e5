// Package config assembles the validated watcher configuration from CLI
// flags and an optional TOML file. Flags win over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	flag "github.com/spf13/pflag"
)

// Config is the validated configuration object handed to the core.
type Config struct {
	Exact           []string `toml:"exact"`
	Glob            []string `toml:"glob"`
	IntervalSeconds float64  `toml:"interval"`
	SleepSeconds    float64  `toml:"sleep"`
	Cmd             []string `toml:"cmd"`
	MetricsAddr     string   `toml:"metrics_addr"`
	Verbose         bool     `toml:"verbose"`

	// ConfigFile is flag-only: the TOML file to merge under the flags.
	ConfigFile string `toml:"-"`

	sleepSet bool
}

// DefaultConfig returns a Config with default values. The post-execution
// sleep defaults to the interval unless set explicitly.
func DefaultConfig() *Config {
	return &Config{
		IntervalSeconds: 0.1,
		SleepSeconds:    unset,
	}
}

// RegisterFlags registers CLI flags on the given flag set.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringArrayVarP(&c.Exact, "exact", "e", c.Exact, "Exact file path to watch (repeatable)")
	fs.StringArrayVarP(&c.Glob, "glob", "g", c.Glob, "Glob pattern to watch (repeatable)")
	fs.Float64VarP(&c.IntervalSeconds, "interval", "i", c.IntervalSeconds, "Seconds between non-differing checks")
	fs.Float64VarP(&c.SleepSeconds, "sleep", "s", c.SleepSeconds, "Seconds to sleep after the command ran (default: interval)")
	fs.StringVarP(&c.ConfigFile, "config", "c", "", "Optional TOML config file")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address (disabled when empty)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "Enable debug logging, including command output")
}

// Finalize merges the optional config file, takes the trailing arguments
// as the command, and validates. Call after fs.Parse.
func (c *Config) Finalize(fs *flag.FlagSet, args []string) error {
	if len(args) > 0 {
		c.Cmd = args
	}

	if c.ConfigFile != "" {
		file, err := loadFile(c.ConfigFile)
		if err != nil {
			return err
		}
		c.mergeFile(file, fs.Changed)
	}

	if fs.Changed("sleep") || c.SleepSeconds >= 0 {
		c.sleepSet = true
	}
	return c.validate()
}

// unset marks a duration field a TOML file did not mention, so an
// explicit zero in the file is distinguishable from absence.
const unset = -1

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	file := &Config{IntervalSeconds: unset, SleepSeconds: unset}
	if _, err := toml.Decode(string(data), file); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return file, nil
}

// mergeFile fills in every field the user did not set on the command line.
func (c *Config) mergeFile(file *Config, changed func(string) bool) {
	if !changed("exact") && len(file.Exact) > 0 {
		c.Exact = file.Exact
	}
	if !changed("glob") && len(file.Glob) > 0 {
		c.Glob = file.Glob
	}
	if !changed("interval") && file.IntervalSeconds != unset {
		c.IntervalSeconds = file.IntervalSeconds
	}
	if !changed("sleep") && file.SleepSeconds != unset {
		c.SleepSeconds = file.SleepSeconds
		c.sleepSet = true
	}
	if !changed("metrics-addr") && file.MetricsAddr != "" {
		c.MetricsAddr = file.MetricsAddr
	}
	if !changed("verbose") && file.Verbose {
		c.Verbose = true
	}
	if len(c.Cmd) == 0 && len(file.Cmd) > 0 {
		c.Cmd = file.Cmd
	}
}

func (c *Config) validate() error {
	if len(c.Exact)+len(c.Glob) == 0 {
		return errors.New("at least one --exact path or --glob pattern is required")
	}
	if len(c.Cmd) == 0 {
		return errors.New("a command must be specified")
	}
	if c.IntervalSeconds < 0 {
		return errors.New("interval must be a non-negative number of seconds")
	}
	if c.sleepSet && c.SleepSeconds < 0 {
		return errors.New("sleep must be a non-negative number of seconds")
	}
	return nil
}

// Interval returns the polling interval.
func (c *Config) Interval() time.Duration {
	return secondsToDuration(c.IntervalSeconds)
}

// Sleep returns the post-execution pause, defaulting to the interval.
func (c *Config) Sleep() time.Duration {
	if c.SleepSeconds < 0 {
		return c.Interval()
	}
	return secondsToDuration(c.SleepSeconds)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
