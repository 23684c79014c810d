// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package loader resolves the native OpenXR loader library once per
// process.
//
// The hosting application calls [Init] before it creates a runtime
// backed by the native loader. Resolution searches the directories
// passed to Init, then XR_LOADER_PATH, then the platform's default
// library search. Init is idempotent: the first call does the work and
// every later call returns the same result.
//
// Nothing else in xrframe calls Init. Code that drives a simulated
// runtime never touches the native loader.
package loader
