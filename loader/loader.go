// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/gogpu/xrframe/internal/xrlog"
)

// EnvPath names an extra directory searched for the loader library.
const EnvPath = "XR_LOADER_PATH"

// EntryPoint is the symbol every OpenXR loader exports.
const EntryPoint = "xrGetInstanceProcAddr"

// ErrNotFound is returned when no candidate library could be opened.
var ErrNotFound = errors.New("loader: OpenXR loader not found")

// Library is a resolved loader.
type Library struct {
	// Path is the candidate that opened successfully.
	Path string

	// Handle is the native library handle.
	Handle unsafe.Pointer

	// GetInstanceProcAddr is the address of EntryPoint.
	GetInstanceProcAddr unsafe.Pointer
}

// Funcs opens libraries and looks up symbols. The zero value uses the
// platform's dynamic loader.
type Funcs struct {
	Open   func(name string) (unsafe.Pointer, error)
	Symbol func(lib unsafe.Pointer, name string) (unsafe.Pointer, error)
}

// Loader resolves a library at most once.
//
// Thread safety: Loader is safe for concurrent use. Concurrent Init
// calls block until the first one finishes.
type Loader struct {
	funcs   Funcs
	started atomic.Bool
	done    chan struct{}

	// Written once before done is closed.
	lib Library
	err error
}

// New returns a loader using funcs. Nil members fall back to the
// platform's dynamic loader.
func New(funcs Funcs) *Loader {
	if funcs.Open == nil {
		funcs.Open = openLibrary
	}
	if funcs.Symbol == nil {
		funcs.Symbol = lookupSymbol
	}
	return &Loader{funcs: funcs, done: make(chan struct{})}
}

// Init resolves the loader. Only the first call searches; later calls,
// whatever their dirs, wait for and return the first result.
func (l *Loader) Init(dirs ...string) (Library, error) {
	if l.started.CompareAndSwap(false, true) {
		l.lib, l.err = l.resolve(dirs)
		close(l.done)
	}
	<-l.done
	return l.lib, l.err
}

// Initialized reports whether Init has completed.
func (l *Loader) Initialized() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *Loader) resolve(dirs []string) (Library, error) {
	var errs []error
	for _, path := range Candidates(dirs...) {
		h, err := l.funcs.Open(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sym, err := l.funcs.Symbol(h, EntryPoint)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		xrlog.Logger().Info("loader: resolved OpenXR loader", "path", path)
		return Library{Path: path, Handle: h, GetInstanceProcAddr: sym}, nil
	}
	return Library{}, fmt.Errorf("%w: %w", ErrNotFound, errors.Join(errs...))
}

// Candidates lists the paths Init tries, in order: each of dirs, the
// XR_LOADER_PATH directory, then the bare library name.
func Candidates(dirs ...string) []string {
	name := LibraryName()
	var out []string
	for _, d := range dirs {
		if d != "" {
			out = append(out, filepath.Join(d, name))
		}
	}
	if d := os.Getenv(EnvPath); d != "" {
		out = append(out, filepath.Join(d, name))
	}
	return append(out, name)
}

// LibraryName returns the platform's loader file name.
func LibraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "openxr_loader.dll"
	case "darwin":
		return "libopenxr_loader.dylib"
	default:
		return "libopenxr_loader.so.1"
	}
}

var std = New(Funcs{})

// Init resolves the process-wide loader. See [Loader.Init].
func Init(dirs ...string) (Library, error) { return std.Init(dirs...) }

// Initialized reports whether the process-wide loader has been resolved.
func Initialized() bool { return std.Initialized() }
