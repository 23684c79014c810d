// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the engine collaborators an XR frame coordinator
// drives without owning.
//
// The coordinator never draws anything itself. It asks a per-eye
// [Viewport] to collect visible geometry for a [Camera], publishes the
// resulting draw list with SwapBuffers, and later asks the same viewport
// to render that list into a [RenderTarget] that wraps a runtime-owned
// swapchain image.
//
// # Key Principle
//
// The engine RECEIVES swapchain images from the XR runtime and the XR
// layer RECEIVES a GPU device from the engine. Neither creates the
// other's resources:
//
//   - [Renderer] exposes the engine's device, backend and native handles
//   - [TextureAdapter] wraps a native swapchain image as a [RenderTarget]
//   - [SceneResolver] names the world and tracking origin to draw
//
// # Software Implementations
//
// [SoftwareViewport], [SoftwareTextures] and [PixmapTarget] implement the
// collaborator interfaces on the CPU. They back the simulated headset used
// by tests and by the xrdemo command.
//
// # Thread Safety
//
// A Viewport is used by two contexts: CollectVisible and SwapBuffers run
// on the collect context, Render on the render context. Implementations
// must keep the list being built separate from the list being rendered.
package render
