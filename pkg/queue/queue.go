// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package queue lists the active notebook jobs of a user.
package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/XENONnT/env-starter/pkg/execution"
	"github.com/XENONnT/env-starter/pkg/types"
)

// Inspector queries the scheduler queue for jobs carrying a label.
type Inspector struct {
	runner execution.Runner
	squeue []string
	label  string
	log    *logrus.Entry
}

// New returns an Inspector running the squeue command line squeue and
// selecting the listing lines that contain label.
func New(runner execution.Runner, squeue []string, label string, log *logrus.Entry) *Inspector {
	return &Inspector{runner: runner, squeue: squeue, label: label, log: log}
}

// Active returns the IDs of the labeled jobs of user that are still known to
// the scheduler. A failing queue command is fatal and never retried.
func (i *Inspector) Active(ctx context.Context, user string) ([]types.JobID, error) {
	argv := append(append([]string(nil), i.squeue...), "-u", user)
	out, err := i.runner.Run(ctx, argv)
	if err != nil {
		return nil, fmt.Errorf("cannot list jobs of user %s: %w", user, err)
	}
	return ParseListing(string(out), i.label, i.log), nil
}

// ParseListing extracts the leading job ID of each line of an squeue listing
// that contains label. Lines whose first field is not a plain job ID, like
// the header, are skipped.
func ParseListing(listing, label string, log *logrus.Entry) []types.JobID {
	var ids []types.JobID
	for _, line := range strings.Split(listing, "\n") {
		if !strings.Contains(line, label) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		id, err := types.ParseJobID(fields[0])
		if err != nil {
			log.Debugf("Skipping queue line '%s': %v", line, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
