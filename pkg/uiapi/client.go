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

// Package uiapi talks to the homebridge-config-ui-x management API.
package uiapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/version"
	"github.com/spf13/afero"
)

const (
	DefaultTimeout = 30 * time.Second

	pluginsPath    = "/api/plugins"
	homebridgePath = "/api/status/homebridge-version"
)

var errNotConfigured = errors.New("client is not configured")

// Client is the management API client. Endpoint and credentials are resolved
// once in New; IsConfigured reports whether that succeeded.
type Client struct {
	storagePath string
	fs          afero.Fs
	httpClient  *http.Client
	timeout     time.Duration
	now         func() time.Time
	logger      logger.Logger

	endpoint   Endpoint
	configured bool
	tokens     *tokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithFs sets the filesystem the host config and secrets are read from.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) {
		c.fs = fs
	}
}

// WithHTTPClient replaces the HTTP client built from the endpoint.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each API request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithNow overrides the clock used for token issuance.
func WithNow(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		c.logger = log
	}
}

// New resolves the endpoint from <storagePath>/config.json and loads the
// secret from <storagePath>/.uix-secrets. Failures are logged and leave the
// client unconfigured; they are never returned.
func New(storagePath string, opts ...Option) *Client {
	c := &Client{
		storagePath: storagePath,
		fs:          afero.NewOsFs(),
		timeout:     DefaultTimeout,
		now:         time.Now,
		logger:      logger.NewTestLogger(),
		endpoint:    DefaultEndpoint(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.configure()

	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.endpoint)
	}

	return c
}

func (c *Client) configure() {
	configPath := filepath.Join(c.storagePath, ConfigFileName)

	block, err := findUIBlock(c.fs, configPath)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", configPath).Msg("Management API not configured")
		return
	}

	c.endpoint = block.endpoint()

	secretsPath := filepath.Join(c.storagePath, SecretsFileName)

	secret, err := readSecretKey(c.fs, secretsPath)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", secretsPath).Msg("Management API secrets unavailable")
		return
	}

	c.tokens = newTokenSource(secret, c.now)
	c.configured = true
}

// newHTTPClient builds the transport for the endpoint. For https there is no
// certificate verification: config-ui-x runs on this host or a user-trusted
// neighbour and commonly uses a self-signed certificate.
func newHTTPClient(ep Endpoint) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if ep.Secure() {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // no certificate verification, see above
		}
	}

	return &http.Client{Transport: transport}
}

func (*Client) Name() string {
	return models.SourceUIAPI
}

func (c *Client) IsConfigured() bool {
	return c.configured
}

func (c *Client) BaseURL() string {
	return c.endpoint.BaseURL()
}

// GetPlugins lists installed plugins with their update status.
func (c *Client) GetPlugins(ctx context.Context) ([]models.PluginStatus, error) {
	var plugins []models.PluginStatus

	if err := c.getJSON(ctx, pluginsPath, &plugins); err != nil {
		return nil, err
	}

	return plugins, nil
}

// GetHomebridge returns the version record of Homebridge itself.
func (c *Client) GetHomebridge(ctx context.Context) (models.PluginStatus, error) {
	var hb models.PluginStatus

	err := c.getJSON(ctx, homebridgePath, &hb)

	return hb, err
}

// Check asks the management API for plugins and Homebridge itself and counts
// the records flagged with an available update.
func (c *Client) Check(ctx context.Context) (*models.UpdateCheckResult, error) {
	plugins, err := c.GetPlugins(ctx)
	if err != nil {
		return nil, err
	}

	hb, err := c.GetHomebridge(ctx)
	if err != nil {
		return nil, err
	}

	plugins = append(plugins, hb)

	result := models.NewAPIResult(plugins, c.now())

	c.logger.Debug().
		Int("outdated", result.Count).
		Interface("packages", result.Outdated).
		Msgf("homebridge-config-ui-x reports %d outdated package(s)", result.Count)

	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst interface{}) error {
	if !c.configured {
		return fmt.Errorf("%w: %w", ErrAPIUnavailable, errNotConfigured)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: sign token: %w", ErrAPIUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.BaseURL() + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrAPIUnavailable, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrAPIUnavailable, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}

		return fmt.Errorf("%w: GET %s: status %d", ErrAPIUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrAPIUnavailable, path, err)
	}

	return nil
}
