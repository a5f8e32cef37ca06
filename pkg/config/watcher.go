/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long the watcher waits after the last write before
// reporting a change. Editors tend to write a file in several steps.
const DefaultSettle = 500 * time.Millisecond

var errWatcherClosed = errors.New("file watcher closed")

// Watcher reports changes to a single file. The parent directory is watched so
// that rename-over-write saves are seen as well.
type Watcher struct {
	path   string
	settle time.Duration
	logger logger.Logger
}

// NewWatcher creates a watcher for path. A non-positive settle uses
// DefaultSettle.
func NewWatcher(path string, settle time.Duration, log logger.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Watcher{
		path:   filepath.Clean(path),
		settle: settle,
		logger: log,
	}
}

// Watch blocks until ctx is done, calling onChange once per burst of writes,
// creates or renames of the watched file.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.logger.Info().Str("path", w.path).Msg("Watching configuration file")

	// nil until an event arrives; a nil channel never fires.
	var settled <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return errWatcherClosed
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Configuration file event")

			settled = time.After(w.settle)
		case <-settled:
			settled = nil

			onChange()
		case err, ok := <-fsw.Errors:
			if !ok {
				return errWatcherClosed
			}

			w.logger.Error().Err(err).Str("path", w.path).Msg("File watcher error")
		}
	}
}
