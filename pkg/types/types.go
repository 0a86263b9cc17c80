// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package types

import (
	"fmt"
	"strconv"
)

// JobID represents a scheduler-assigned job identifier
type JobID uint64

func (v JobID) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseJobID converts the textual representation used by the scheduler
// command line tools into a JobID.
func ParseJobID(s string) (JobID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid job ID '%s': %w", s, err)
	}
	return JobID(v), nil
}

// ContainsJobID returns true if id is part of ids.
func ContainsJobID(ids []JobID, id JobID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
