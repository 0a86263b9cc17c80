// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package mocks provides a testify mock of execution.Runner.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Runner is a mock of execution.Runner. Expectations are set on the argv
// slice, e.g. r.On("Run", mock.Anything, []string{"squeue", "-u", "alice"}).
type Runner struct {
	mock.Mock
}

// Run implements execution.Runner.
func (r *Runner) Run(ctx context.Context, argv []string) ([]byte, error) {
	args := r.Called(ctx, argv)
	var out []byte
	switch v := args.Get(0).(type) {
	case string:
		out = []byte(v)
	case []byte:
		out = v
	}
	return out, args.Error(1)
}
