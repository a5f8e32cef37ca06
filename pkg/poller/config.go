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

package poller

import (
	"fmt"
	"time"
)

const (
	DefaultInitialDelay = 60 * time.Second
	DefaultInterval     = 8 * time.Hour
	DefaultCheckTimeout = 5 * time.Minute
)

// Config represents scheduler timing.
type Config struct {
	InitialDelay time.Duration `json:"initial_delay"`
	Interval     time.Duration `json:"interval"`
	CheckTimeout time.Duration `json:"check_timeout"`
}

// DefaultConfig returns the stock timing: first check a minute after start,
// then every eight hours.
func DefaultConfig() Config {
	return Config{
		InitialDelay: DefaultInitialDelay,
		Interval:     DefaultInterval,
		CheckTimeout: DefaultCheckTimeout,
	}
}

// Validate implements config.Validator interface. Zero values take the
// defaults; negative values are rejected.
func (c *Config) Validate() error {
	if c.InitialDelay < 0 {
		return fmt.Errorf("%w: initial delay %s", ErrInvalidDuration, c.InitialDelay)
	}

	if c.Interval < 0 {
		return fmt.Errorf("%w: interval %s", ErrInvalidDuration, c.Interval)
	}

	if c.CheckTimeout < 0 {
		return fmt.Errorf("%w: check timeout %s", ErrInvalidDuration, c.CheckTimeout)
	}

	if c.InitialDelay == 0 {
		c.InitialDelay = DefaultInitialDelay
	}

	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}

	if c.CheckTimeout == 0 {
		c.CheckTimeout = DefaultCheckTimeout
	}

	return nil
}
