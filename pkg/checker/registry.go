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

package checker

import (
	"fmt"
	"sort"
)

var (
	errNoSource = fmt.Errorf("no update source found")
)

// SourceCreator builds a Source on demand.
type SourceCreator func() (Source, error)

// Registry defines how to store and retrieve update source factories.
type Registry interface {
	Register(name string, creator SourceCreator)
	Get(name string) (Source, error)
	Names() []string
}

// sourceRegistry is a simple in-memory implementation of Registry.
type sourceRegistry struct {
	factories map[string]SourceCreator
}

// NewRegistry creates a new source registry.
func NewRegistry() Registry {
	return &sourceRegistry{
		factories: make(map[string]SourceCreator),
	}
}

// Register adds a creator function to the registry for a given source name.
func (r *sourceRegistry) Register(name string, creator SourceCreator) {
	r.factories[name] = creator
}

// Get builds the source registered under name.
func (r *sourceRegistry) Get(name string) (Source, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNoSource, name)
	}

	return f()
}

func (r *sourceRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
