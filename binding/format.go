// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// FormatTable maps native swapchain formats of one backend to engine
// texture formats.
type FormatTable map[int64]gputypes.TextureFormat

// is8Bit reports whether f is a four-channel 8-bit color format.
func is8Bit(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// SelectColorFormat picks the swapchain color format from the runtime's
// list: the first 8-bit sRGB format, else the first 8-bit linear format,
// else the first listed color format the table knows. Depth formats are
// never selected.
func SelectColorFormat(supported []int64, table FormatTable) (int64, gputypes.TextureFormat, error) {
	tiers := []func(gputypes.TextureFormat) bool{
		func(f gputypes.TextureFormat) bool { return is8Bit(f) && f.IsSrgb() },
		func(f gputypes.TextureFormat) bool { return is8Bit(f) },
		func(f gputypes.TextureFormat) bool { return !f.HasDepth() },
	}
	for _, accept := range tiers {
		for _, native := range supported {
			f, ok := table[native]
			if ok && f != gputypes.TextureFormatUndefined && accept(f) {
				return native, f, nil
			}
		}
	}
	return 0, gputypes.TextureFormatUndefined, fmt.Errorf("%w: runtime offers %v", ErrNoFormat, supported)
}

// SampleCounts returns the sample counts to try, from recommended down
// to 1.
func SampleCounts(recommended uint32) []uint32 {
	if recommended == 0 {
		recommended = 1
	}
	counts := make([]uint32, 0, recommended)
	for s := recommended; s >= 1; s-- {
		counts = append(counts, s)
	}
	return counts
}
