// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	shellquote "github.com/kballard/go-shellquote"
)

// Config holds every site-specific value needed to start a notebook job.
// It is built once per invocation and passed to each component.
type Config struct {
	// JobName is the --job-name of submitted jobs and the label searched
	// for in the queue listing.
	JobName string
	// Account is the scheduler account jobs are charged to.
	Account string
	// TmpDir holds rendered scripts and job logs. It must be shared
	// between the login node and the compute nodes.
	TmpDir string
	// CachePath is the connection cache file. Empty means
	// $HOME/DefaultCacheFileName.
	CachePath string

	// SqueueCommand and SbatchCommand are shell-quoted command lines.
	SqueueCommand string
	SbatchCommand string

	GPUPartition   string
	CUDAModule     string
	GPUMaxDuration time.Duration

	Reservation           string
	ReservationPartitions []string
	ReservationMaxRAMMB   int
	ReservationMaxCPUs    int

	// ContainerEnv is the environment name selecting the container payload.
	// Any other environment is activated with conda.
	ContainerEnv  string
	StarterScript string

	TutorialsSource string
	// TutorialsDir is relative to the home directory.
	TutorialsDir string

	LoginHost string

	DenyList     []string
	PollInterval time.Duration
	QueueTimeout time.Duration

	// KeepFiles disables removal of the job script and log after the
	// endpoint has been found.
	KeepFiles bool
}

// ResolveCachePath returns the cache file path, falling back to a file in
// the given home directory.
func (c Config) ResolveCachePath(home string) string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(home, DefaultCacheFileName)
}

// ReservationPartition returns true if partition may use the reservation.
func (c Config) ReservationPartition(partition string) bool {
	for _, p := range c.ReservationPartitions {
		if p == partition {
			return true
		}
	}
	return false
}

// SqueueArgv splits SqueueCommand into a binary and its arguments.
func (c Config) SqueueArgv() ([]string, error) {
	return splitCommand("squeue", c.SqueueCommand)
}

// SbatchArgv splits SbatchCommand into a binary and its arguments.
func (c Config) SbatchArgv() ([]string, error) {
	return splitCommand("sbatch", c.SbatchCommand)
}

func splitCommand(name, cmd string) ([]string, error) {
	argv, err := shellquote.Split(cmd)
	if err != nil {
		return nil, fmt.Errorf("invalid %s command '%s': %w", name, cmd, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty %s command", name)
	}
	return argv, nil
}

// Validate validates the Config object.
func (c Config) Validate() error {
	if c.JobName == "" {
		return errors.New("job name cannot be empty")
	}
	if c.TmpDir == "" {
		return errors.New("temporary directory cannot be empty")
	}
	if _, err := c.SqueueArgv(); err != nil {
		return err
	}
	if _, err := c.SbatchArgv(); err != nil {
		return err
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.QueueTimeout <= 0 {
		return fmt.Errorf("queue timeout must be positive, got %s", c.QueueTimeout)
	}
	if c.GPUMaxDuration <= 0 {
		return fmt.Errorf("GPU max duration must be positive, got %s", c.GPUMaxDuration)
	}
	return nil
}
