// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build js && wasm

package loader

import (
	"errors"
	"unsafe"
)

var errNoDynamicLoading = errors.New("loader: dynamic libraries are not supported on js/wasm")

func openLibrary(string) (unsafe.Pointer, error) { return nil, errNoDynamicLoading }

func lookupSymbol(unsafe.Pointer, string) (unsafe.Pointer, error) { return nil, errNoDynamicLoading }
