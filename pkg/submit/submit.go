// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package submit writes rendered batch scripts and hands them to sbatch.
package submit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/XENONnT/env-starter/pkg/cerrors"
	"github.com/XENONnT/env-starter/pkg/execution"
	"github.com/XENONnT/env-starter/pkg/job"
	"github.com/XENONnT/env-starter/pkg/types"
)

// NewPaths returns fresh script and log paths in dir. A random suffix keeps
// concurrent submissions apart.
func NewPaths(dir, label string) job.Paths {
	base := filepath.Join(dir, fmt.Sprintf("%s-%s", label, uuid.New().String()))
	return job.Paths{Script: base + ".sh", Log: base + ".log"}
}

// Submitter submits batch scripts.
type Submitter struct {
	runner execution.Runner
	sbatch []string
	clock  clock.Clock
	log    *logrus.Entry
}

// Opt is a functional option for New.
type Opt func(s *Submitter)

// WithClock option sets the clock used for submission timestamps.
func WithClock(value clock.Clock) Opt {
	return func(s *Submitter) {
		s.clock = value
	}
}

// New returns a Submitter invoking the sbatch command line.
func New(runner execution.Runner, sbatch []string, log *logrus.Entry, opts ...Opt) *Submitter {
	s := &Submitter{
		runner: runner,
		sbatch: sbatch,
		clock:  clock.New(),
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit writes the script, makes it executable and submits it.
func (s *Submitter) Submit(ctx context.Context, rj job.RenderedJob) (*job.SubmittedJob, error) {
	if err := writeExecutable(rj.Paths.Script, rj.Script); err != nil {
		return nil, err
	}
	s.log.Debugf("Wrote job script %s", rj.Paths.Script)

	argv := append(append([]string(nil), s.sbatch...), rj.Paths.Script)
	out, err := s.runner.Run(ctx, argv)
	if err != nil {
		return nil, fmt.Errorf("cannot submit job: %w", err)
	}
	id, err := ParseSubmissionOutput(string(out))
	if err != nil {
		return nil, err
	}
	s.log.Infof("Submitted job %s, logging to %s", id, rj.Paths.Log)
	return &job.SubmittedJob{
		Paths:       rj.Paths,
		ID:          id,
		SubmittedAt: s.clock.Now(),
	}, nil
}

// Cleanup removes the script and the log of a job. Failures are logged only.
func (s *Submitter) Cleanup(paths job.Paths) {
	for _, p := range []string{paths.Script, paths.Log} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.log.Warnf("Failed to remove %s: %v", p, err)
		}
	}
}

// ParseSubmissionOutput returns the job ID printed by sbatch, that is the
// last whitespace-delimited token of its output.
func ParseSubmissionOutput(out string) (types.JobID, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, &cerrors.SubmissionParseError{Output: out, Err: fmt.Errorf("empty output")}
	}
	id, err := types.ParseJobID(fields[len(fields)-1])
	if err != nil {
		return 0, &cerrors.SubmissionParseError{Output: out, Err: err}
	}
	return id, nil
}

func writeExecutable(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("cannot write job script: %w", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat job script: %w", err)
	}
	mode := fi.Mode().Perm()
	// copy the read bits to the execute bits
	mode |= (mode & 0444) >> 2
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("cannot make job script executable: %w", err)
	}
	return nil
}
