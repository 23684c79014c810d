// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"image"
	"image/png"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/xrframe/render"
)

// mirror keeps a copy of the most recent image of each eye for the
// desktop preview.
type mirror struct {
	mu   sync.Mutex
	eyes [2]*image.RGBA
}

// mirrorViewport copies every rendered eye image into a mirror.
type mirrorViewport struct {
	render.Viewport
	eye int
	m   *mirror
}

func (v *mirrorViewport) Render(target render.RenderTarget, world render.World, camera render.Camera, shadowPass bool, materialOverride any) error {
	if err := v.Viewport.Render(target, world, camera, shadowPass, materialOverride); err != nil {
		return err
	}
	if st, ok := target.(*render.SwapchainTarget); ok && st.Pixmap() != nil {
		v.m.capture(v.eye, st.Pixmap().Image())
	}
	return nil
}

func (m *mirror) capture(eye int, src *image.RGBA) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dst := m.eyes[eye]
	if dst == nil || dst.Bounds() != src.Bounds() {
		dst = image.NewRGBA(src.Bounds())
		m.eyes[eye] = dst
	}
	copy(dst.Pix, src.Pix)
}

// compose scales both eyes side by side into an image width pixels wide.
func (m *mirror) compose(width int) (*image.RGBA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	left, right := m.eyes[0], m.eyes[1]
	if left == nil || right == nil {
		return nil, errors.New("no frame was rendered")
	}
	eyeW := width / 2
	eyeH := eyeW * left.Bounds().Dy() / left.Bounds().Dx()
	out := image.NewRGBA(image.Rect(0, 0, 2*eyeW, eyeH))
	xdraw.CatmullRom.Scale(out, image.Rect(0, 0, eyeW, eyeH), left, left.Bounds(), xdraw.Src, nil)
	xdraw.CatmullRom.Scale(out, image.Rect(eyeW, 0, 2*eyeW, eyeH), right, right.Bounds(), xdraw.Src, nil)
	return out, nil
}

func (m *mirror) save(path string, width int) error {
	img, err := m.compose(width)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
