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

import "errors"

var (
	// ErrAPIUnavailable covers transport failures, non-2xx responses and
	// malformed payloads from the management API.
	ErrAPIUnavailable = errors.New("management api unavailable")
	// ErrConfigUnreadable is reported when the host config or the secrets
	// file is missing or malformed.
	ErrConfigUnreadable = errors.New("management api config unreadable")

	errNoUIBlock      = errors.New("no config-ui-x platform block")
	errEmptySecretKey = errors.New("secret key is empty")
)
