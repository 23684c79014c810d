// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNewPixmapTarget(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"small", 16, 16},
		{"eye", 144, 160},
		{"wide", 100, 10},
		{"tall", 10, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := NewPixmapTarget(tt.width, tt.height)

			if target.Width() != tt.width {
				t.Errorf("Width() = %d, want %d", target.Width(), tt.width)
			}
			if target.Height() != tt.height {
				t.Errorf("Height() = %d, want %d", target.Height(), tt.height)
			}
			if target.Format() != gputypes.TextureFormatRGBA8Unorm {
				t.Errorf("Format() = %v, want RGBA8Unorm", target.Format())
			}
			if target.TextureView() != nil {
				t.Error("TextureView() should be nil for CPU target")
			}
			if target.Stride() != tt.width*4 {
				t.Errorf("Stride() = %d, want %d", target.Stride(), tt.width*4)
			}
		})
	}
}

func TestPixmapTargetFill(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 7, 5))
	target := NewPixmapTargetFromImage(img)
	want := color.RGBA{10, 20, 30, 255}
	target.Fill(want)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSoftwareTexturesLifecycle(t *testing.T) {
	textures := NewSoftwareTextures(true)
	img := SwapchainImage{Handle: 0x1001, Eye: 1, Index: 2, Width: 32, Height: 16, SampleCount: 1,
		Format: gputypes.TextureFormatRGBA8UnormSrgb}

	rt, err := textures.WrapSwapchainImage(img)
	if err != nil {
		t.Fatalf("WrapSwapchainImage: %v", err)
	}
	if rt.Width() != 32 || rt.Height() != 16 || rt.Format() != gputypes.TextureFormatRGBA8UnormSrgb {
		t.Errorf("target = %dx%d %v", rt.Width(), rt.Height(), rt.Format())
	}
	if rt.Pixels() == nil || rt.Stride() != 32*4 {
		t.Error("CPU-backed target should expose pixels")
	}
	if got, ok := textures.Target(1, 2); !ok || got.Image().Handle != 0x1001 {
		t.Errorf("Target(1, 2) = %v, %v", got, ok)
	}
	if textures.Live() != 1 {
		t.Errorf("Live = %d, want 1", textures.Live())
	}
	textures.DestroyTarget(rt)
	if textures.Live() != 0 {
		t.Errorf("Live = %d after destroy, want 0", textures.Live())
	}

	boom := errors.New("boom")
	textures.FailWrap(boom)
	if _, err := textures.WrapSwapchainImage(img); !errors.Is(err, boom) {
		t.Errorf("WrapSwapchainImage = %v, want %v", err, boom)
	}
}

func TestSwapchainTargetWithoutBacking(t *testing.T) {
	st := NewSwapchainTarget(SwapchainImage{Width: 8, Height: 8}, nil, nil)
	if st.Pixels() != nil || st.Stride() != 0 || st.TextureView() != nil {
		t.Error("target without backing should expose no pixels or view")
	}
	st.Destroy()
}
