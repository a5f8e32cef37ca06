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
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenExpiry is the signed lifetime requested for each token.
	TokenExpiry = 60 * time.Second
	// TokenReuseWindow is how long a minted token is handed out again. It is
	// shorter than TokenExpiry so no request goes out with a token about to lapse.
	TokenReuseWindow = 30 * time.Second

	serviceUser = "homebridge-plugin-update-check"
	instanceID  = "xxxxxxx"
)

// Claims is the synthetic admin identity presented to config-ui-x. It is
// constant across installations and carries no secret.
type Claims struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Admin      bool   `json:"admin"`
	InstanceID string `json:"instanceId"`
	jwt.RegisteredClaims
}

// tokenSource mints HS256 tokens and caches the latest one.
type tokenSource struct {
	secret []byte
	now    func() time.Time

	mu       sync.Mutex
	value    string
	issuedAt time.Time
}

func newTokenSource(secretKey string, now func() time.Time) *tokenSource {
	return &tokenSource{secret: []byte(secretKey), now: now}
}

// Token returns the cached token while it is inside the reuse window and
// mints a fresh one otherwise.
func (t *tokenSource) Token() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if t.value != "" && now.Sub(t.issuedAt) < TokenReuseWindow {
		return t.value, nil
	}

	claims := Claims{
		Username:   serviceUser,
		Name:       serviceUser,
		Admin:      true,
		InstanceID: instanceID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", err
	}

	t.value = signed
	t.issuedAt = now

	return signed, nil
}

// Invalidate drops the cached token.
func (t *tokenSource) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.value = ""
	t.issuedAt = time.Time{}
}
