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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/config"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/lifecycle"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/plugin"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/version"
)

var (
	errFailedToLoadConfig = fmt.Errorf("failed to load config")
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to the platform config file (defaults apply when empty)")
	once := flag.Bool("once", false, "Run a single update check, print the result and exit")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		return nil
	}

	ctx := context.Background()

	var cfg plugin.PlatformConfig

	if *configPath != "" {
		if err := config.NewConfig(nil, nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
			return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
		}
	} else if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	platformLogger, err := lifecycle.CreateComponentLogger("plugin-update-check", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	platformLogger.Info().Str("version", version.GetFullVersion()).Msg("Starting plugin-update-check")

	p, err := plugin.NewPlatform(ctx, &cfg, platformLogger, plugin.WithConfigPath(*configPath))
	if err != nil {
		return err
	}

	if *once {
		return checkOnce(ctx, p)
	}

	return lifecycle.RunService(ctx, p, platformLogger)
}

func checkOnce(ctx context.Context, p *plugin.Platform) error {
	defer func() { _ = p.Stop(ctx) }()

	checkCtx, cancel := context.WithTimeout(ctx, p.Scheduler().Config().CheckTimeout)
	defer cancel()

	result, err := p.Source().Check(checkCtx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(result)
}
