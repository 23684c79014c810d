// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/render"
)

// Priority order for adapter selection (first compatible wins).
var adapterPriority = []string{Vulkan, GLES}

var adapters = gpucontext.NewRegistry[Adapter](gpucontext.WithPriority(adapterPriority...))

// Register registers an adapter factory with the given name.
// This is typically called from init() functions in adapter packages.
// If an adapter with the same name is already registered, it will be replaced.
func Register(name string, factory func() Adapter) {
	adapters.Register(name, factory)
}

// Unregister removes an adapter from the registry.
// This is useful for testing.
func Unregister(name string) {
	adapters.Unregister(name)
}

// Available returns the registered adapter names in priority order.
func Available() []string {
	names := adapters.Available()
	slices.SortFunc(names, func(a, b string) int {
		if d := rank(a) - rank(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return names
}

func rank(name string) int {
	if i := slices.Index(adapterPriority, name); i >= 0 {
		return i
	}
	return len(adapterPriority)
}

// Select returns a fresh instance of the highest-priority adapter that
// is compatible with r.
func Select(r render.Renderer) (Adapter, error) {
	for _, name := range Available() {
		a := adapters.Get(name)
		if a == nil {
			continue
		}
		if a.IsCompatible(r) {
			info := r.AdapterInfo()
			xrlog.Logger().Info("binding: selected adapter", "adapter", name, "backend", r.Backend().String(),
				"gpu", info.Name, "gpu_type", info.Type.String(), "surface_format", r.SurfaceFormat().String())
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: backend %s", ErrNoAdapter, r.Backend())
}
