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

// Package ncu detects outdated Homebridge packages with npm-check-updates.
package ncu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/spf13/afero"
)

const (
	DefaultCommand = "ncu"

	// DockerPackageFile is the manifest of the official Homebridge image. Its
	// presence marks a containerized install.
	DockerPackageFile = "/homebridge/package.json"

	// FamilyPattern matches homebridge, @scope/homebridge and homebridge-*.
	FamilyPattern = `^(@.*/)?homebridge(-.*)?$`

	toolFilter = `/^(@.*\/)?homebridge(-.*)?$/`
)

var familyRE = regexp.MustCompile(FamilyPattern)

// IsFamilyPackage reports whether name belongs to the Homebridge family.
func IsFamilyPackage(name string) bool {
	return familyRE.MatchString(name)
}

// Checker runs the registry diff for global packages and, inside the
// Homebridge container, for the container manifest.
type Checker struct {
	runner  Runner
	fs      afero.Fs
	command string
	now     func() time.Time
	logger  logger.Logger
}

// Option configures a Checker.
type Option func(*Checker)

func WithRunner(r Runner) Option {
	return func(c *Checker) {
		c.runner = r
	}
}

func WithFs(fs afero.Fs) Option {
	return func(c *Checker) {
		c.fs = fs
	}
}

// WithCommand sets the tool command line, e.g. "npx --yes npm-check-updates".
func WithCommand(cmdline string) Option {
	return func(c *Checker) {
		if cmdline != "" {
			c.command = cmdline
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Checker) {
		c.logger = log
	}
}

func New(opts ...Option) *Checker {
	c := &Checker{
		runner:  ExecRunner{},
		fs:      afero.NewOsFs(),
		command: DefaultCommand,
		now:     time.Now,
		logger:  logger.NewTestLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (*Checker) Name() string {
	return models.SourceRegistry
}

// IsDocker reports whether the container manifest is present.
func (c *Checker) IsDocker() bool {
	ok, err := afero.Exists(c.fs, DockerPackageFile)
	return err == nil && ok
}

// Check returns the merged upgrade map. Container results overwrite global
// ones for the same package name.
func (c *Checker) Check(ctx context.Context) (*models.UpdateCheckResult, error) {
	upgrades, err := c.run(ctx, "--global")
	if err != nil {
		return nil, err
	}

	if c.IsDocker() {
		dockerUpgrades, err := c.run(ctx, "--packageFile", DockerPackageFile)
		if err != nil {
			return nil, err
		}

		for name, version := range dockerUpgrades {
			upgrades[name] = version
		}
	}

	result := models.NewRegistryResult(upgrades, c.now())

	c.logger.Debug().
		Int("outdated", result.Count).
		Interface("packages", result.Upgrades).
		Msgf("node-check-updates reports %d outdated package(s)", result.Count)

	return result, nil
}

func (c *Checker) run(ctx context.Context, scope ...string) (map[string]string, error) {
	argv, err := shellwords.Parse(c.command)
	if err != nil {
		return nil, fmt.Errorf("%w: parse command %q: %w", ErrRegistryCheckFailed, c.command, err)
	}

	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrRegistryCheckFailed, errEmptyCommand)
	}

	args := append(argv[1:len(argv):len(argv)], scope...)
	args = append(args, "--jsonUpgraded", "--filter", toolFilter)

	c.logger.Debug().Str("command", argv[0]).Strs("args", args).Msg("Running registry diff")

	stdout, stderr, err := c.runner.Run(ctx, argv[0], args...)
	if cmdErr := classifyCommandError(argv[0], args, err, stderr); cmdErr != nil {
		return nil, cmdErr
	}

	return parseUpgrades(stdout)
}

// parseUpgrades decodes the --jsonUpgraded output and drops anything outside
// the Homebridge family.
func parseUpgrades(stdout []byte) (map[string]string, error) {
	upgrades := map[string]string{}

	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return upgrades, nil
	}

	var raw map[string]string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode output: %w", ErrRegistryCheckFailed, err)
	}

	for name, version := range raw {
		if IsFamilyPackage(name) {
			upgrades[name] = version
		}
	}

	return upgrades, nil
}
