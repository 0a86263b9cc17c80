// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/XENONnT/env-starter/pkg/config"
)

func TestStepSurfacesOnlyNewLines(t *testing.T) {
	s, fresh := Step(State{}, "Starting jupyter job\n", nil)
	assert.Equal(t, []string{"Starting jupyter job"}, fresh)
	assert.Equal(t, 1, s.Watermark)
	assert.Equal(t, Pending, s.Outcome)

	s, fresh = Step(s, "Starting jupyter job\nLoading container\n", nil)
	assert.Equal(t, []string{"Loading container"}, fresh)
	assert.Equal(t, 2, s.Watermark)

	s, fresh = Step(s, "Starting jupyter job\nLoading container\n", nil)
	assert.Empty(t, fresh)
	assert.Equal(t, 2, s.Watermark)
}

func TestStepIgnoresIncompleteLine(t *testing.T) {
	s, fresh := Step(State{}, "Starting\nhttp://10.0.0.5:152", nil)
	assert.Equal(t, []string{"Starting"}, fresh)
	assert.Equal(t, Pending, s.Outcome)

	s, fresh = Step(s, "Starting\nhttp://10.0.0.5:15234/?token=abc123\n", nil)
	assert.Equal(t, []string{"http://10.0.0.5:15234/?token=abc123"}, fresh)
	assert.Equal(t, Found, s.Outcome)
	assert.Equal(t, "http://10.0.0.5:15234/?token=abc123", s.Endpoint)
}

func TestFlushScansTrailingLine(t *testing.T) {
	s, _ := Step(State{}, "Starting\nhttp://10.0.0.5:15234/?token=abc123", nil)
	assert.Equal(t, Pending, s.Outcome)

	s, fresh := Flush(s, nil)
	assert.Equal(t, []string{"http://10.0.0.5:15234/?token=abc123"}, fresh)
	assert.Equal(t, Found, s.Outcome)
	assert.Equal(t, "http://10.0.0.5:15234/?token=abc123", s.Endpoint)
	assert.Equal(t, "Starting\nhttp://10.0.0.5:15234/?token=abc123", s.Log)
}

func TestFlushCompleteContent(t *testing.T) {
	s, _ := Step(State{}, "Starting\n", nil)
	next, fresh := Flush(s, nil)
	assert.Empty(t, fresh)
	assert.Equal(t, s, next)
}

func TestStepDenyList(t *testing.T) {
	content := "Pulling image from sylabs.io http://library.sylabs.io/x\n"
	s, _ := Step(State{}, content, config.DefaultDenyList)
	assert.Equal(t, Pending, s.Outcome)

	content += "[I 10:00:01 NotebookApp] The Jupyter Notebook is running at: http://10.0.0.5:15234/?token=abc123\n"
	s, _ = Step(s, content, config.DefaultDenyList)
	assert.Equal(t, Found, s.Outcome)
	assert.Equal(t, "http://10.0.0.5:15234/?token=abc123", s.Endpoint)
}

func TestStepScansAllLines(t *testing.T) {
	// the endpoint line was already surfaced by a previous step
	s := State{Watermark: 5}
	content := "a\nb\nhttp://10.0.0.5:15234/\nc\nd\n"
	s, fresh := Step(s, content, nil)
	assert.Empty(t, fresh)
	assert.Equal(t, Found, s.Outcome)
	assert.Equal(t, "http://10.0.0.5:15234/", s.Endpoint)
}

func TestStepFirstMatchWins(t *testing.T) {
	content := "or http://10.0.0.5:15234/?token=first\nor http://127.0.0.1:15234/?token=second\n"
	s, _ := Step(State{}, content, nil)
	assert.Equal(t, "http://10.0.0.5:15234/?token=first", s.Endpoint)
}

func TestStepTerminalStateIsSticky(t *testing.T) {
	s := State{Outcome: Found, Endpoint: "http://a:1/"}
	next, fresh := Step(s, "http://b:2/\n", nil)
	assert.Empty(t, fresh)
	assert.Equal(t, "http://a:1/", next.Endpoint)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "Pending", Pending.String())
	assert.Equal(t, "Found", Found.String())
	assert.Equal(t, "TimedOut", TimedOut.String())
}
