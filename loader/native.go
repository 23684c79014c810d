// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !(js && wasm)

package loader

import (
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
)

func openLibrary(name string) (unsafe.Pointer, error) { return ffi.LoadLibrary(name) }

func lookupSymbol(lib unsafe.Pointer, name string) (unsafe.Pointer, error) {
	return ffi.GetSymbol(lib, name)
}
