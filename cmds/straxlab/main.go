// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/XENONnT/env-starter/cmds/straxlab/cli"
	"github.com/XENONnT/env-starter/pkg/cerrors"
	"github.com/XENONnT/env-starter/pkg/hostenv"
)

// Start a strax jupyter notebook server on the batch queue.
//
// Usage examples:
// Start or reconnect to a notebook on the default partition
//   ./straxlab
//
// Start a notebook with 4 CPUs and 16GB of RAM on dali
//   ./straxlab --partition dali --cpu 4 --ram 16000
//
// Start a fresh notebook in a conda environment
//   ./straxlab --force-new --env strax

const (
	exitFailure = 1
	exitTimeout = 2
)

func main() {
	// Interrupting only stops waiting, the submitted job keeps running.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Main(ctx, os.Args[0], os.Args[1:], os.Stdout, cli.Env{Host: hostenv.OS{}}); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		var timeoutErr *cerrors.ReadinessTimeout
		if errors.As(err, &timeoutErr) {
			os.Exit(exitTimeout)
		}
		os.Exit(exitFailure)
	}
}
