// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package hostenv gives access to the facts about the login host that the
// launcher depends on, so that tests can substitute fixed values.
package hostenv

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
)

// HostEnv describes the invoking user and the login host.
type HostEnv interface {
	Username() (string, error)
	HomeDir() (string, error)
	LookPath(file string) (string, error)
}

// OS is the HostEnv of the running process.
type OS struct{}

// Username returns $USER, falling back to the account database.
func (OS) Username() (string, error) {
	if u := os.Getenv("USER"); u != "" {
		return u, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("cannot determine current user: %w", err)
	}
	return u.Username, nil
}

// HomeDir returns the home directory of the invoking user.
func (OS) HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return home, nil
}

// LookPath searches file in $PATH.
func (OS) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Static is a HostEnv with fixed values.
type Static struct {
	User  string
	Home  string
	Paths map[string]string
}

// Username returns the fixed user name.
func (s Static) Username() (string, error) {
	if s.User == "" {
		return "", errors.New("no user configured")
	}
	return s.User, nil
}

// HomeDir returns the fixed home directory.
func (s Static) HomeDir() (string, error) {
	if s.Home == "" {
		return "", errors.New("no home directory configured")
	}
	return s.Home, nil
}

// LookPath resolves file from the fixed path table.
func (s Static) LookPath(file string) (string, error) {
	if p, ok := s.Paths[file]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", file, exec.ErrNotFound)
}
