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

package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "warn",
		Debug:  true,
		Output: "stdout",
	}

	require.NoError(t, Init(config))

	logger := GetLogger()
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(&Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestSetDebug(t *testing.T) {
	SetDebug(true)

	logger := GetLogger()
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	SetDebug(false)

	logger = GetLogger()
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   zerolog.Level
	}{
		{name: "nil config", config: nil, want: zerolog.InfoLevel},
		{name: "empty level", config: &Config{}, want: zerolog.InfoLevel},
		{name: "explicit level", config: &Config{Level: "error"}, want: zerolog.ErrorLevel},
		{name: "debug overrides level", config: &Config{Level: "error", Debug: true}, want: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "yes")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "stdout", config.Output)
	assert.True(t, config.Debug)
}

func TestWithComponent(t *testing.T) {
	componentLogger := WithComponent("test-component")
	assert.NotEqual(t, zerolog.Disabled, componentLogger.GetLevel())
}
