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

package ncu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrRegistryCheckFailed is returned when the registry-diff tool fails,
	// writes to stderr or produces output that is not a name->version map.
	ErrRegistryCheckFailed = errors.New("registry check failed")

	errEmptyCommand = errors.New("empty command line")
)

// Runner executes an external tool and captures both output streams.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands on the local host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error) {
	var outBuf, errBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()

	return outBuf.Bytes(), errBuf.Bytes(), err
}

// CommandError describes a failed tool invocation.
type CommandError struct {
	Command string
	Args    []string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))

	switch {
	case e.Stderr != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v: %s", ErrRegistryCheckFailed, cmdline, e.Err, e.Stderr)
	case e.Stderr != "":
		return fmt.Sprintf("%s: %s: %s", ErrRegistryCheckFailed, cmdline, e.Stderr)
	default:
		return fmt.Sprintf("%s: %s: %v", ErrRegistryCheckFailed, cmdline, e.Err)
	}
}

func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRegistryCheckFailed}
	}

	return []error{ErrRegistryCheckFailed, e.Err}
}

func classifyCommandError(command string, args []string, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if err == nil && msg == "" {
		return nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		msg = command + " not found in PATH"
	}

	return &CommandError{Command: command, Args: args, Stderr: msg, Err: err}
}
