// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command xrdemo drives an xrframe headset against the simulated
// runtime.
//
// Usage:
//
//	xrdemo run [--config xrframe.toml] [--frames N] [--mirror out.png]
//	xrdemo formats
//	xrdemo loader [dir...]
//	xrdemo config
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogpu/xrframe"
	"github.com/gogpu/xrframe/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "xrdemo:", err)
		os.Exit(1)
	}
}

// globals holds the persistent flags.
type globals struct {
	configPath string
	logLevel   string
	jsonLogs   bool

	level slog.LevelVar
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "xrdemo",
		Short:         "Drive an OpenXR stereo frame loop against a simulated headset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&g.jsonLogs, "json", false, "log JSON even on a terminal")

	root.AddCommand(newRunCmd(g), newFormatsCmd(), newLoaderCmd(g), newConfigCmd(g))
	return root
}

// load reads the configuration and installs the logger.
func (g *globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	level, _ := cfg.Level()
	g.level.Set(level)
	xrframe.SetLogger(slog.New(g.handler(os.Stderr)))
	return cfg, nil
}

// handler picks human-readable output for terminals and JSON for
// everything else.
func (g *globals) handler(f *os.File) slog.Handler {
	opts := &slog.HandlerOptions{Level: &g.level}
	if !g.jsonLogs && term.IsTerminal(int(f.Fd())) {
		return slog.NewTextHandler(f, opts)
	}
	return slog.NewJSONHandler(f, opts)
}

func newConfigCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
