// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/xrframe/internal/xrlog"
)

// Watch calls fn with the reloaded configuration every time the file at
// path is written or replaced, until ctx is done. A file that fails to
// load is reported to fn with a nil Config; the previous configuration
// stays in effect.
//
// The parent directory is watched so that editors which save by
// renaming a temporary file are seen.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			xrlog.Logger().Warn("config: watch error", "path", abs, "err", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				xrlog.Logger().Warn("config: reload failed", "path", abs, "err", err)
				fn(nil, err)
				continue
			}
			xrlog.Logger().Info("config: reloaded", "path", abs)
			fn(cfg, nil)
		}
	}
}
