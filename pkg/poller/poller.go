// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package poller waits for the notebook server of a job to print its URL.
// The job log is written by a process on another host, so it is re-read
// from the start on every tick instead of being tailed.
package poller

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/XENONnT/env-starter/pkg/cerrors"
)

// ReadFunc returns the whole content of a log file. A missing file must be
// reported with an error satisfying os.IsNotExist.
type ReadFunc func(path string) (string, error)

// ReadFile is the default ReadFunc.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

// Poller drives Step on a timer.
type Poller struct {
	clock        clock.Clock
	interval     time.Duration
	queueTimeout time.Duration
	denyList     []string
	read         ReadFunc
	observe      func(line string)
	log          *logrus.Entry
}

// Opt is a functional option for New.
type Opt func(p *Poller)

// WithClock option sets the clock used for sleeping.
func WithClock(value clock.Clock) Opt {
	return func(p *Poller) {
		p.clock = value
	}
}

// WithReader option sets the function used to read the log.
func WithReader(value ReadFunc) Opt {
	return func(p *Poller) {
		p.read = value
	}
}

// WithLineObserver option sets the function receiving each new log line.
// By default new lines are logged.
func WithLineObserver(value func(line string)) Opt {
	return func(p *Poller) {
		p.observe = value
	}
}

// New returns a Poller sleeping interval between two reads, waiting at most
// queueTimeout for the log file to appear, and ignoring endpoint candidates
// that contain one of denyList.
func New(interval, queueTimeout time.Duration, denyList []string, log *logrus.Entry, opts ...Opt) *Poller {
	p := &Poller{
		clock:        clock.New(),
		interval:     interval,
		queueTimeout: queueTimeout,
		denyList:     denyList,
		read:         ReadFile,
		log:          log,
	}
	p.observe = func(line string) {
		p.log.Info(line)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until the log at logPath contains an endpoint line and returns
// the raw endpoint. The timeout starts once the log exists, i.e. once the
// scheduler started the job. The final read also scans a trailing line
// without newline. If no endpoint is found then, a *cerrors.ReadinessTimeout
// with the whole log is returned.
func (p *Poller) Wait(ctx context.Context, logPath string, timeout time.Duration) (string, error) {
	if err := p.waitForLog(ctx, logPath); err != nil {
		return "", err
	}

	var state State
	for {
		content, err := p.read(logPath)
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot read job log %s: %w", logPath, err)
		}
		var fresh []string
		state, fresh = Step(state, content, p.denyList)
		for _, line := range fresh {
			p.observe(line)
		}
		if state.Outcome == Found {
			p.log.Debugf("Found endpoint after %s", state.Elapsed)
			return state.Endpoint, nil
		}
		if state.Elapsed >= timeout {
			state, fresh = Flush(state, p.denyList)
			for _, line := range fresh {
				p.observe(line)
			}
			if state.Outcome == Found {
				return state.Endpoint, nil
			}
			return "", p.timedOut(logPath, timeout, state)
		}
		p.log.Infof("Waiting for jupyter server to start inside job...")
		if err := p.sleep(ctx); err != nil {
			return "", err
		}
		state.Elapsed += p.interval
	}
}

func (p *Poller) timedOut(logPath string, timeout time.Duration, state State) error {
	state.Outcome = TimedOut
	p.log.Debugf("Poll %s after %s, %d log lines", state.Outcome, state.Elapsed, state.Watermark)
	return &cerrors.ReadinessTimeout{
		LogPath: logPath,
		Timeout: timeout.String(),
		Log:     state.Log,
	}
}

func (p *Poller) waitForLog(ctx context.Context, logPath string) error {
	var waited time.Duration
	for {
		_, err := p.read(logPath)
		if err == nil {
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot read job log %s: %w", logPath, err)
		}
		if waited >= p.queueTimeout {
			return fmt.Errorf("job did not start within %s, log %s was never created", p.queueTimeout, logPath)
		}
		p.log.Infof("Waiting for your job to start...")
		if err := p.sleep(ctx); err != nil {
			return err
		}
		waited += p.interval
	}
}

func (p *Poller) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(p.interval):
		return nil
	}
}
