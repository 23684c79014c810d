// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/xrframe/loader"
)

func newLoaderCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "loader [dir...]",
		Short: "Resolve the native OpenXR loader library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			dirs := append(args, cfg.LoaderDirs...)
			out := cmd.OutOrStdout()
			for _, c := range loader.Candidates(dirs...) {
				fmt.Fprintln(out, "candidate:", c)
			}
			lib, err := loader.Init(dirs...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "resolved: %s (%s at %p)\n", lib.Path, loader.EntryPoint, lib.GetInstanceProcAddr)
			return nil
		},
	}
}
