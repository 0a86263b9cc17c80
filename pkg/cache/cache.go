// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package cache persists the endpoint of the last notebook job. The file
// may contain an access token, so it is only accessible by its owner.
package cache

import (
	"fmt"
	"os"
	"strings"

	"github.com/XENONnT/env-starter/pkg/cerrors"
	"github.com/XENONnT/env-starter/pkg/endpoint"
	"github.com/XENONnT/env-starter/pkg/types"
)

// Record associates a job with the endpoint of its notebook server.
type Record struct {
	JobID    types.JobID
	Endpoint string
}

// String returns the on-disk representation "<job id> <endpoint>".
func (r Record) String() string {
	return fmt.Sprintf("%s %s", r.JobID, r.Endpoint)
}

// ParseRecord parses the on-disk representation of a Record. The endpoint
// must be well formed.
func ParseRecord(s string) (*Record, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return nil, fmt.Errorf("expected '<job id> <endpoint>', got %q", s)
	}
	id, err := types.ParseJobID(fields[0])
	if err != nil {
		return nil, err
	}
	if _, err := endpoint.Parse(fields[1]); err != nil {
		return nil, err
	}
	return &Record{JobID: id, Endpoint: fields[1]}, nil
}

// Store is a single-record file store.
type Store struct {
	path string
}

// New returns a Store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the cache file path.
func (s *Store) Path() string {
	return s.path
}

// Read returns the stored record. A missing or malformed file results in a
// *cerrors.CacheReadError.
func (s *Store) Read() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &cerrors.CacheReadError{Path: s.path, Err: err}
	}
	rec, err := ParseRecord(string(data))
	if err != nil {
		return nil, &cerrors.CacheReadError{Path: s.path, Err: err}
	}
	return rec, nil
}

// Write replaces the stored record and restricts the file to its owner.
func (s *Store) Write(rec Record) error {
	if err := os.WriteFile(s.path, []byte(rec.String()), 0600); err != nil {
		return fmt.Errorf("cannot write cache file: %w", err)
	}
	if err := os.Chmod(s.path, 0700); err != nil {
		return fmt.Errorf("cannot restrict cache file permissions: %w", err)
	}
	return nil
}
