// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads xrframe host settings from TOML with environment
// overrides.
//
// Precedence, lowest first: [Default], the TOML file, XRFRAME_*
// environment variables. [Watch] reloads the file when it changes so
// that diagnostic knobs such as the log level can be adjusted while a
// headset is running.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds headset and demo settings.
type Config struct {
	ApplicationName string   `toml:"application_name"`
	RetryInterval   Duration `toml:"retry_interval"`
	TrackerRoles    []string `toml:"tracker_roles"`
	LoaderDirs      []string `toml:"loader_dirs"`

	// Diagnostic knobs.
	ReverseEyeOrder bool   `toml:"reverse_eye_order"`
	ParallelCollect bool   `toml:"parallel_collect"`
	CollectMirrors  bool   `toml:"collect_mirrors"`
	AllowUI         bool   `toml:"allow_ui"`
	LogLevel        string `toml:"log_level"`

	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`

	Demo Demo `toml:"demo"`
}

// Demo configures the xrdemo command.
type Demo struct {
	// Backend is "vulkan" or "gles".
	Backend string `toml:"backend"`

	// Queues is the number of graphics queues the simulated renderer reports.
	Queues int `toml:"queues"`

	// Frames stops the run after this many submitted frames; 0 runs
	// until interrupted.
	Frames int `toml:"frames"`

	// Mirror is a PNG path the desktop mirror is written to on exit.
	Mirror      string `toml:"mirror"`
	MirrorWidth int    `toml:"mirror_width"`

	// Pace makes the simulated runtime sleep one frame period per frame.
	Pace bool `toml:"pace"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ApplicationName: "xrframe",
		RetryInterval:   Duration{1500 * time.Millisecond},
		TrackerRoles:    []string{"waist", "left_foot", "right_foot"},
		ParallelCollect: true,
		AllowUI:         true,
		LogLevel:        "info",
		Near:            0.05,
		Far:             1000,
		Demo: Demo{
			Backend:     "vulkan",
			Queues:      2,
			MirrorWidth: 1024,
			Pace:        true,
		},
	}
}

// Load returns the configuration in path, or the defaults when path is
// empty, with environment overrides applied. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

func (c *Config) applyEnv() {
	overrideString(&c.ApplicationName, "XRFRAME_APPLICATION_NAME")
	overrideDuration(&c.RetryInterval.Duration, "XRFRAME_RETRY_INTERVAL")
	overrideList(&c.TrackerRoles, "XRFRAME_TRACKER_ROLES")
	overrideList(&c.LoaderDirs, "XRFRAME_LOADER_DIRS")
	overrideBool(&c.ReverseEyeOrder, "XRFRAME_REVERSE_EYE_ORDER")
	overrideBool(&c.ParallelCollect, "XRFRAME_PARALLEL_COLLECT")
	overrideBool(&c.CollectMirrors, "XRFRAME_COLLECT_MIRRORS")
	overrideBool(&c.AllowUI, "XRFRAME_ALLOW_UI")
	overrideString(&c.LogLevel, "XRFRAME_LOG_LEVEL")
	overrideString(&c.Demo.Backend, "XRFRAME_BACKEND")
	overrideInt(&c.Demo.Queues, "XRFRAME_QUEUES")
	overrideInt(&c.Demo.Frames, "XRFRAME_FRAMES")
	overrideString(&c.Demo.Mirror, "XRFRAME_MIRROR")
	overrideBool(&c.Demo.Pace, "XRFRAME_PACE")
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.RetryInterval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("retry_interval must be positive, got %v", c.RetryInterval))
	}
	if c.Near <= 0 || c.Far <= c.Near {
		errs = append(errs, fmt.Errorf("clip planes must satisfy 0 < near < far, got %g, %g", c.Near, c.Far))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool, len(c.TrackerRoles))
	for _, r := range c.TrackerRoles {
		if r == "" || strings.Contains(r, "/") {
			errs = append(errs, fmt.Errorf("invalid tracker role %q", r))
		}
		if seen[r] {
			errs = append(errs, fmt.Errorf("duplicate tracker role %q", r))
		}
		seen[r] = true
	}
	if !slices.Contains([]string{"vulkan", "gles"}, c.Demo.Backend) {
		errs = append(errs, fmt.Errorf("demo.backend must be vulkan or gles, got %q", c.Demo.Backend))
	}
	if c.Demo.Queues < 1 {
		errs = append(errs, fmt.Errorf("demo.queues must be at least 1, got %d", c.Demo.Queues))
	}
	if c.Demo.Frames < 0 || c.Demo.MirrorWidth < 0 {
		errs = append(errs, errors.New("demo.frames and demo.mirror_width must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return l, nil
}

func overrideString(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

func overrideList(dest *[]string, key string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	*dest = (*dest)[:0:0]
	for _, s := range strings.Split(val, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*dest = append(*dest, s)
		}
	}
}

func overrideDuration(dest *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*dest = parsed
		}
	}
}

func overrideBool(dest *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			*dest = parsed
		}
	}
}

func overrideInt(dest *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dest = parsed
		}
	}
}
