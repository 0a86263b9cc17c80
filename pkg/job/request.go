// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package job

import (
	"errors"
	"fmt"
	"time"
)

// Request describes the resources and the environment of a notebook job.
// It is built once per invocation and never modified afterwards.
type Request struct {
	CPUs        int
	RAMMB       int
	GPU         bool
	MaxDuration time.Duration
	Partition   string

	// Env is the environment to activate. The configured container
	// environment selects the container starter, anything else is passed
	// to conda.
	Env       string
	Container string
	// CondaDir is the conda installation used for non-container environments.
	CondaDir string

	IncludeNodes []string
	ExcludeNodes []string
	// ExtraDirectives are appended verbatim as #SBATCH lines.
	ExtraDirectives []string

	BypassReservation bool
	ForceNew          bool
}

// Validate performs sanity checks on the request
func (r Request) Validate() error {
	if r.CPUs < 1 {
		return fmt.Errorf("cpu count must be at least 1, got %d", r.CPUs)
	}
	if r.RAMMB <= 0 {
		return fmt.Errorf("RAM must be positive, got %d MB", r.RAMMB)
	}
	if r.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be positive, got %s", r.MaxDuration)
	}
	if r.Partition == "" {
		return errors.New("partition cannot be empty")
	}
	if r.Env == "" {
		return errors.New("environment cannot be empty")
	}
	return nil
}

// WallTime returns the wall clock limit to request. GPU jobs are capped at
// gpuMax regardless of the requested duration.
func (r Request) WallTime(gpuMax time.Duration) time.Duration {
	if r.GPU && r.MaxDuration > gpuMax {
		return gpuMax
	}
	return r.MaxDuration
}

// MemPerCPU returns the per-CPU memory in MB, rounded down.
func (r Request) MemPerCPU() int {
	return r.RAMMB / r.CPUs
}
