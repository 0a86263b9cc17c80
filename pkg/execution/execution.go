// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package execution runs the scheduler command line tools.
package execution

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"

	"github.com/XENONnT/env-starter/pkg/cerrors"
)

// Runner executes a command to completion and returns its standard output.
// A command that cannot be started or exits with a non-zero status results
// in a *cerrors.InfrastructureError.
type Runner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// Local runs commands on the local host. It is a thin layer over exec.Command.
type Local struct {
	log *logrus.Entry
}

// NewLocal returns a Runner for the local host.
func NewLocal(log *logrus.Entry) *Local {
	return &Local{log: log}
}

// Run implements Runner.
func (l *Local) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("no command given")
	}
	cmdline := shellquote.Join(argv...)
	bin, err := resolveBinary(argv[0])
	if err != nil {
		return nil, &cerrors.InfrastructureError{Command: cmdline, Err: err}
	}

	cmd := exec.CommandContext(ctx, bin, argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	l.log.Debugf("Running command '%s'", cmdline)
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), &cerrors.InfrastructureError{
			Command: cmdline,
			Output:  stderr.String() + stdout.String(),
			Err:     err,
		}
	}
	l.log.Debugf("Command '%s' stdout '%s', stderr '%s'", cmdline, stdout.Bytes(), stderr.Bytes())
	return stdout.Bytes(), nil
}

func resolveBinary(bin string) (string, error) {
	if !filepath.IsAbs(bin) {
		p, err := exec.LookPath(bin)
		if err != nil {
			return "", fmt.Errorf("cannot find '%s' executable in PATH: %w", bin, err)
		}
		return p, nil
	}
	fi, err := os.Stat(bin)
	if err != nil {
		return "", fmt.Errorf("no such file: %s", bin)
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("not a file: %s", bin)
	}
	if !canExecute(fi) {
		return "", fmt.Errorf("provided binary is not executable: %s", bin)
	}
	return bin, nil
}

func canExecute(fi os.FileInfo) bool {
	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return fi.Mode()&0111 != 0
	}
	if stat.Uid == uint32(os.Getuid()) {
		return stat.Mode&0100 == 0100
	}
	if stat.Gid == uint32(os.Getgid()) {
		return stat.Mode&0010 == 0010
	}
	return stat.Mode&0001 == 0001
}
