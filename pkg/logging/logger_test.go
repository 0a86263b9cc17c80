// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerPrefix(t *testing.T) {
	e := GetLogger("queue")
	assert.Equal(t, "queue", e.Data["prefix"])
}

func TestAddFields(t *testing.T) {
	e := AddFields(GetLogger("poller"), map[string]interface{}{"job": 1, "log": "/tmp/x"})
	assert.Equal(t, "poller", e.Data["prefix"])
	assert.Equal(t, 1, e.Data["job"])
	assert.Equal(t, "/tmp/x", e.Data["log"])
}

func TestSetLevel(t *testing.T) {
	defer func() { log.SetLevel(logrus.InfoLevel) }()
	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.Error(t, SetLevel("chatty"))
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Disable()
	GetLogger("cache").Info("written")
	assert.Contains(t, buf.String(), "written")
}
