// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package reconciler decides whether the notebook job of a user can be
// reused and otherwise drives a fresh submission until its endpoint is
// known.
//
// The states of a single invocation are:
//
//	Start -> {Reusing, Submitting} -> Polling -> {Ready, TimedOut}
//
// Reusing falls back to Submitting when the cache does not match an active
// job. Ready and TimedOut are terminal.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/XENONnT/env-starter/pkg/cache"
	"github.com/XENONnT/env-starter/pkg/cerrors"
	"github.com/XENONnT/env-starter/pkg/endpoint"
	"github.com/XENONnT/env-starter/pkg/job"
	"github.com/XENONnT/env-starter/pkg/logging"
	"github.com/XENONnT/env-starter/pkg/types"
)

// State is a state of the reconciliation.
type State string

// Reconciliation states.
const (
	StateStart      = State("Start")
	StateReusing    = State("Reusing")
	StateSubmitting = State("Submitting")
	StatePolling    = State("Polling")
	StateReady      = State("Ready")
	StateTimedOut   = State("TimedOut")
)

// QueueInspector lists the active labeled jobs of a user.
type QueueInspector interface {
	Active(ctx context.Context, user string) ([]types.JobID, error)
}

// CacheStore persists the last known endpoint.
type CacheStore interface {
	Read() (*cache.Record, error)
	Write(rec cache.Record) error
}

// ScriptRenderer renders batch scripts.
type ScriptRenderer interface {
	Render(req job.Request, paths job.Paths, reservationAllowed bool) (job.RenderedJob, error)
}

// JobSubmitter submits rendered scripts.
type JobSubmitter interface {
	Submit(ctx context.Context, rj job.RenderedJob) (*job.SubmittedJob, error)
	Cleanup(paths job.Paths)
}

// ReadinessWaiter waits for the endpoint line of a job log.
type ReadinessWaiter interface {
	Wait(ctx context.Context, logPath string, timeout time.Duration) (string, error)
}

// Result is the outcome of a successful reconciliation.
type Result struct {
	JobID    types.JobID
	Endpoint endpoint.Endpoint
	Reused   bool
	Reason   Reason
	Orphans  []types.JobID
	// Submitted is set for fresh submissions.
	Submitted *job.SubmittedJob
}

// Reconciler wires the components of one invocation together.
type Reconciler struct {
	Queue     QueueInspector
	Cache     CacheStore
	Renderer  ScriptRenderer
	Submitter JobSubmitter
	Poller    ReadinessWaiter
	// NewPaths returns the script and log paths of a new submission.
	NewPaths func() job.Paths
	// KeepFiles disables the removal of script and log once ready.
	KeepFiles bool
	Log       *logrus.Entry
}

func (r *Reconciler) enter(s State) {
	r.Log.WithField("state", s).Debugf("Entering state %s", s)
}

// Run reconciles the notebook job of user with req. timeout bounds the wait
// for the notebook server once the job has started.
func (r *Reconciler) Run(ctx context.Context, user string, req job.Request, timeout time.Duration) (*Result, error) {
	r.enter(StateStart)
	r.Log.Debugf("Job request: %s", spew.Sdump(req))

	active, err := r.Queue.Active(ctx, user)
	if err != nil {
		return nil, err
	}

	var (
		rec      *cache.Record
		cacheErr error
	)
	if len(active) > 0 && !req.ForceNew {
		r.enter(StateReusing)
		r.Log.Infof("You still have a running jupyter job, trying to retrieve the URL.")
		rec, cacheErr = r.Cache.Read()
		var readErr *cerrors.CacheReadError
		if errors.As(cacheErr, &readErr) {
			r.Log.Warnf("Treating as cache miss: %v", cacheErr)
		}
	}

	decision := Decide(active, req.ForceNew, rec, cacheErr)
	if decision.Reused() {
		ep, err := endpoint.Parse(decision.Record.Endpoint)
		if err != nil {
			return nil, err
		}
		r.enter(StateReady)
		r.Log.Infof("Reusing job %s", decision.Record.JobID)
		return &Result{
			JobID:    decision.Record.JobID,
			Endpoint: ep,
			Reused:   true,
			Reason:   decision.Reason,
		}, nil
	}
	if len(decision.Orphans) > 0 {
		r.Log.Warnf("Active jobs %v cannot be attached to (%s), submitting a new one. Cancel them with 'scancel' if they are not needed anymore.",
			decision.Orphans, decision.Reason)
	}
	return r.submit(ctx, req, decision, timeout)
}

func (r *Reconciler) submit(ctx context.Context, req job.Request, decision Decision, timeout time.Duration) (*Result, error) {
	r.enter(StateSubmitting)
	r.Log.Infof("Submitting a new jupyter job (%s)", decision.Reason)
	rj, err := r.Renderer.Render(req, r.NewPaths(), decision.ReservationAllowed())
	if err != nil {
		return nil, err
	}
	sj, err := r.Submitter.Submit(ctx, rj)
	if err != nil {
		return nil, err
	}

	log := logging.AddField(r.Log, "job", sj.ID)
	r.enter(StatePolling)
	raw, err := r.Poller.Wait(ctx, sj.Paths.Log, timeout)
	if err != nil {
		var timeoutErr *cerrors.ReadinessTimeout
		if errors.As(err, &timeoutErr) {
			r.enter(StateTimedOut)
		}
		return nil, fmt.Errorf("job %s: %w", sj.ID, err)
	}
	ep, err := endpoint.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", sj.ID, err)
	}

	r.enter(StateReady)
	if err := r.Cache.Write(cache.Record{JobID: sj.ID, Endpoint: raw}); err != nil {
		log.Warnf("Could not cache endpoint of job %s: %v", sj.ID, err)
	} else {
		log.Infof("Dumped URL %s to cache file", raw)
	}
	if !r.KeepFiles {
		r.Submitter.Cleanup(sj.Paths)
	}
	return &Result{
		JobID:     sj.ID,
		Endpoint:  ep,
		Reason:    decision.Reason,
		Orphans:   decision.Orphans,
		Submitted: sj,
	}, nil
}
