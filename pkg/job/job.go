// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package job

import (
	"time"

	"github.com/XENONnT/env-starter/pkg/types"
)

// Paths are the files backing one submission attempt.
type Paths struct {
	Script string
	Log    string
}

// RenderedJob is the batch script of a single submission attempt.
type RenderedJob struct {
	Paths
	Script string
}

// SubmittedJob is a job accepted by the scheduler.
type SubmittedJob struct {
	Paths
	ID          types.JobID
	SubmittedAt time.Time
}
