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
	"encoding/json"
	"fmt"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/spf13/afero"
)

// FileConfigLoader loads configuration from a JSON file.
type FileConfigLoader struct {
	fs     afero.Fs
	logger logger.Logger
}

// NewFileConfigLoader returns a loader reading from fs. A nil fs means the OS
// filesystem.
func NewFileConfigLoader(fs afero.Fs, log logger.Logger) *FileConfigLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &FileConfigLoader{fs: fs, logger: log}
}

// Load implements ConfigLoader by reading and unmarshaling a JSON file.
func (f *FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	err = json.Unmarshal(data, dst)
	if err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	if f.logger != nil {
		f.logger.Debug().Str("path", path).Msg("Loaded configuration file")
	}

	return nil
}
