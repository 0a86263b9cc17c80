// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package cerrors

import (
	"fmt"
	"strings"
)

// InfrastructureError indicates that a scheduler command could not be
// executed or exited with an error. It is never retried: a broken queue
// or submission command means a broken environment.
type InfrastructureError struct {
	Command string
	Output  string
	Err     error
}

// Error returns the error string associated with the error
func (e *InfrastructureError) Error() string {
	msg := fmt.Sprintf("command '%s' failed: %v", e.Command, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\noutput:\n" + out
	}
	return msg
}

// Unwrap returns the underlying execution error
func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// SubmissionParseError indicates that the job identifier could not be
// extracted from the output of the submission command.
type SubmissionParseError struct {
	Output string
	Err    error
}

// Error returns the error string associated with the error
func (e *SubmissionParseError) Error() string {
	return fmt.Sprintf("cannot parse job ID from submission output %q: %v", e.Output, e.Err)
}

// Unwrap returns the underlying parse error
func (e *SubmissionParseError) Unwrap() error {
	return e.Err
}

// ReadinessTimeout indicates that no endpoint line appeared in the job log
// within the allowed time. Log holds the whole log content for diagnosis.
type ReadinessTimeout struct {
	LogPath string
	Timeout string
	Log     string
}

// Error returns the error string associated with the error
func (e *ReadinessTimeout) Error() string {
	return fmt.Sprintf("notebook server did not start within %s. Dumping job logfile %s:\n\n%s", e.Timeout, e.LogPath, e.Log)
}

// CacheReadError indicates that the cache file is missing or corrupt. It is
// recovered locally and treated as a cache miss.
type CacheReadError struct {
	Path string
	Err  error
}

// Error returns the error string associated with the error
func (e *CacheReadError) Error() string {
	return fmt.Sprintf("cannot read cache file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying read or parse error
func (e *CacheReadError) Unwrap() error {
	return e.Err
}

// EndpointParseError indicates a malformed endpoint string.
type EndpointParseError struct {
	Endpoint string
	Reason   string
}

// Error returns the error string associated with the error
func (e *EndpointParseError) Error() string {
	return fmt.Sprintf("malformed endpoint %q: %s", e.Endpoint, e.Reason)
}
