// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package hostenv

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	var env HostEnv = Static{
		User:  "alice",
		Home:  "/home/alice",
		Paths: map[string]string{"conda": "/opt/miniconda3/bin/conda"},
	}
	u, err := env.Username()
	require.NoError(t, err)
	assert.Equal(t, "alice", u)
	h, err := env.HomeDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/alice", h)
	p, err := env.LookPath("conda")
	require.NoError(t, err)
	assert.Equal(t, "/opt/miniconda3/bin/conda", p)

	_, err = env.LookPath("jupyter")
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestStaticEmpty(t *testing.T) {
	_, err := Static{}.Username()
	assert.Error(t, err)
	_, err = Static{}.HomeDir()
	assert.Error(t, err)
}

func TestOSUsernameFromEnv(t *testing.T) {
	t.Setenv("USER", "bob")
	u, err := OS{}.Username()
	require.NoError(t, err)
	assert.Equal(t, "bob", u)
}
