// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package reconciler

import (
	"github.com/XENONnT/env-starter/pkg/cache"
	"github.com/XENONnT/env-starter/pkg/types"
)

// Reason explains a Decision.
type Reason string

// Decision reasons.
const (
	// ReasonCacheHit means an active job matches the cached record.
	ReasonCacheHit = Reason("cache-hit")
	// ReasonForceNew means reuse was bypassed on request.
	ReasonForceNew = Reason("force-new")
	// ReasonNoActiveJob means the user has no labeled job in the queue.
	ReasonNoActiveJob = Reason("no-active-job")
	// ReasonCacheUnreadable means labeled jobs are active but the cache
	// file is missing or corrupt.
	ReasonCacheUnreadable = Reason("cache-unreadable")
	// ReasonStaleCache means labeled jobs are active but none of them is
	// the cached one.
	ReasonStaleCache = Reason("stale-cache")
)

// Decision is either Reused, carrying the cached record, or NeedsSubmission.
type Decision struct {
	Reason Reason
	// Record is set when the decision is to reuse.
	Record *cache.Record
	// Orphans are the active labeled jobs that can no longer be attached
	// to because their endpoint is unknown.
	Orphans []types.JobID
}

// Reused returns true if the cached endpoint can be used as is.
func (d Decision) Reused() bool {
	return d.Record != nil
}

// ReservationAllowed returns true if a fresh submission may use the
// reservation, that is unless reuse was bypassed with force-new.
func (d Decision) ReservationAllowed() bool {
	return !d.Reused() && d.Reason != ReasonForceNew
}

// Decide chooses between reusing the cached endpoint and submitting a new
// job. rec and cacheErr are the result of reading the cache; they are only
// looked at when active is not empty and forceNew is false.
func Decide(active []types.JobID, forceNew bool, rec *cache.Record, cacheErr error) Decision {
	switch {
	case forceNew:
		return Decision{Reason: ReasonForceNew}
	case len(active) == 0:
		return Decision{Reason: ReasonNoActiveJob}
	case cacheErr != nil || rec == nil:
		return Decision{Reason: ReasonCacheUnreadable, Orphans: active}
	case !types.ContainsJobID(active, rec.JobID):
		return Decision{Reason: ReasonStaleCache, Orphans: active}
	}
	return Decision{Reason: ReasonCacheHit, Record: rec}
}
