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

package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/poller"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/sensor"
)

const (
	PlatformName       = "PluginUpdate"
	DefaultStorageDir  = ".homebridge"
	DefaultHistoryFile = "plugin-update-check.db"
)

var errNegativeFrequency = errors.New("checkFrequency must not be negative")

// PlatformConfig is the platform block of the Homebridge config. Fields tagged
// hot:"restart" are only read at startup.
type PlatformConfig struct {
	Platform       string             `json:"platform"`
	Name           string             `json:"name,omitempty"`
	ForceNcu       bool               `json:"forceNcu,omitempty" hot:"restart"`
	SensorType     string             `json:"sensorType,omitempty" hot:"restart"`
	UpdateType     string             `json:"updateType,omitempty" hot:"restart"`
	CheckFrequency int                `json:"checkFrequency,omitempty" hot:"restart"`
	Interval       models.Duration    `json:"interval,omitempty" hot:"restart"`
	InitialDelay   models.Duration    `json:"initialDelay,omitempty" hot:"restart"`
	CheckTimeout   models.Duration    `json:"checkTimeout,omitempty" hot:"restart"`
	StoragePath    string             `json:"storagePath,omitempty" hot:"restart"`
	NcuCommand     string             `json:"ncuCommand,omitempty" hot:"restart"`
	HistoryPath    string             `json:"historyPath,omitempty" hot:"restart"`
	NATS           *models.NATSConfig `json:"nats,omitempty" hot:"restart"`
	WatchConfig    bool               `json:"watchConfig,omitempty"`
	Logging        *logger.Config     `json:"logging,omitempty"`
}

// Validate implements config.Validator. It folds the legacy fields into their
// replacements and fills defaults.
func (c *PlatformConfig) Validate() error {
	if c.Platform == "" {
		c.Platform = PlatformName
	}

	// updateType predates sensorType and only knew motion and contact.
	if strings.TrimSpace(c.SensorType) == "" && c.UpdateType != "" {
		c.SensorType = c.UpdateType
	}

	c.SensorType = sensor.Resolve(c.SensorType).Type

	if c.CheckFrequency < 0 {
		return errNegativeFrequency
	}

	// checkFrequency is in minutes and wins over interval when set.
	if c.CheckFrequency > 0 {
		c.Interval = models.Duration(time.Duration(c.CheckFrequency) * time.Minute)
	}

	sched := c.SchedulerConfig()
	if err := sched.Validate(); err != nil {
		return err
	}

	c.Interval = models.Duration(sched.Interval)
	c.InitialDelay = models.Duration(sched.InitialDelay)
	c.CheckTimeout = models.Duration(sched.CheckTimeout)

	storage, err := expandHome(c.StoragePath)
	if err != nil {
		return err
	}

	c.StoragePath = storage

	if c.HistoryPath != "" {
		historyPath, err := expandHome(c.HistoryPath)
		if err != nil {
			return err
		}

		if !filepath.IsAbs(historyPath) {
			historyPath = filepath.Join(c.StoragePath, historyPath)
		}

		c.HistoryPath = historyPath
	}

	if c.NATS != nil {
		if err := c.NATS.Validate(); err != nil {
			return fmt.Errorf("nats: %w", err)
		}
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	return nil
}

// SchedulerConfig returns the timing for the poller.
func (c *PlatformConfig) SchedulerConfig() poller.Config {
	return poller.Config{
		InitialDelay: time.Duration(c.InitialDelay),
		Interval:     time.Duration(c.Interval),
		CheckTimeout: time.Duration(c.CheckTimeout),
	}
}

// expandHome resolves "~" prefixes; an empty path means ~/.homebridge.
func expandHome(path string) (string, error) {
	if path != "" && path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	switch {
	case path == "":
		return filepath.Join(home, DefaultStorageDir), nil
	case path == "~":
		return home, nil
	default:
		return filepath.Join(home, path[2:]), nil
	}
}
