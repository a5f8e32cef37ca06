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

package uiapi

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/afero"
)

const (
	ConfigFileName  = "config.json"
	SecretsFileName = ".uix-secrets"

	defaultHost = "localhost"
	defaultPort = 8581
)

// uiPlatformNames are the platform identifiers config-ui-x registers under.
var uiPlatformNames = map[string]bool{
	"config":                         true,
	"homebridge-config-ui-x.config": true,
}

type sslConfig struct {
	Key string `json:"key,omitempty"`
	Pfx string `json:"pfx,omitempty"`
}

type platformBlock struct {
	Platform string     `json:"platform"`
	Host     string     `json:"host,omitempty"`
	Port     int        `json:"port,omitempty"`
	SSL      *sslConfig `json:"ssl,omitempty"`
}

type hostConfig struct {
	Platforms []platformBlock `json:"platforms"`
}

type secretsFile struct {
	SecretKey string `json:"secretKey"`
}

// Endpoint is where the management API listens.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
}

// DefaultEndpoint is used when the UI block does not override host or port.
func DefaultEndpoint() Endpoint {
	return Endpoint{Scheme: "http", Host: defaultHost, Port: defaultPort}
}

func (e Endpoint) BaseURL() string {
	return e.Scheme + "://" + net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) Secure() bool {
	return e.Scheme == "https"
}

func (b *platformBlock) endpoint() Endpoint {
	ep := DefaultEndpoint()

	if b.Host != "" {
		ep.Host = b.Host
	}

	if b.Port != 0 {
		ep.Port = b.Port
	}

	if b.SSL != nil && (b.SSL.Key != "" || b.SSL.Pfx != "") {
		ep.Scheme = "https"
	}

	return ep
}

// findUIBlock returns the first config-ui-x platform block in the host config.
func findUIBlock(fs afero.Fs, path string) (*platformBlock, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigUnreadable, err)
	}

	var cfg hostConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigUnreadable, path, err)
	}

	for i := range cfg.Platforms {
		if uiPlatformNames[cfg.Platforms[i].Platform] {
			return &cfg.Platforms[i], nil
		}
	}

	return nil, errNoUIBlock
}

func readSecretKey(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfigUnreadable, err)
	}

	var secrets secretsFile
	if err := json.Unmarshal(data, &secrets); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrConfigUnreadable, path, err)
	}

	if secrets.SecretKey == "" {
		return "", fmt.Errorf("%w: %w", ErrConfigUnreadable, errEmptySecretKey)
	}

	return secrets.SecretKey, nil
}
