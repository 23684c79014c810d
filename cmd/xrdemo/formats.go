// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/xrframe/binding"
	"github.com/gogpu/xrframe/binding/gles"
	"github.com/gogpu/xrframe/binding/vulkan"
	"github.com/gogpu/xrframe/xr/noop"
)

type formatSource struct {
	extension string
	runtime   []int64
	table     binding.FormatTable
}

var formatSources = map[string]formatSource{
	binding.Vulkan: {vulkan.Extension, noop.VulkanFormats, vulkan.Formats},
	binding.GLES:   {gles.Extension, noop.GLFormats, gles.Formats},
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "Show swapchain format negotiation for every graphics binding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BINDING\tEXTENSION\tNATIVE\tFORMAT\tSELECTED")
			for _, name := range binding.Available() {
				src, ok := formatSources[name]
				if !ok {
					continue
				}
				selected, _, err := binding.SelectColorFormat(src.runtime, src.table)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				for _, native := range src.runtime {
					format, known := src.table[native]
					label := "-"
					if known {
						label = format.String()
					}
					mark := ""
					if native == selected {
						mark = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%#x\t%s\t%s\n", name, src.extension, native, label, mark)
				}
			}
			return w.Flush()
		},
	}
}
