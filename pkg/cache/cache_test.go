// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package cache

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XENONnT/env-starter/pkg/cerrors"
	"github.com/XENONnT/env-starter/pkg/types"
)

func newStore(t *testing.T) *Store {
	return New(filepath.Join(t.TempDir(), ".last_jupyter_url"))
}

func TestWriteRead(t *testing.T) {
	s := newStore(t)
	rec := Record{JobID: 12345, Endpoint: "http://10.0.0.5:16234/?token=zzz"}
	require.NoError(t, s.Write(rec))

	data, err := ioutil.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "12345 http://10.0.0.5:16234/?token=zzz", string(data))

	fi, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), fi.Mode().Perm())

	got, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, rec, *got)
}

func TestWriteOverwrites(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Write(Record{JobID: 1, Endpoint: "http://a:1/?token=a-very-long-token"}))
	require.NoError(t, s.Write(Record{JobID: 2, Endpoint: "http://b:2/"}))
	got, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, Record{JobID: 2, Endpoint: "http://b:2/"}, *got)
}

func TestReadMissing(t *testing.T) {
	_, err := newStore(t).Read()
	var cacheErr *cerrors.CacheReadError
	require.True(t, errors.As(err, &cacheErr))
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func TestReadMalformed(t *testing.T) {
	for _, content := range []string{"", "http://10.0.0.5:16234/", "abc http://10.0.0.5:16234/", "1 2 3", "12345 10.0.0.5:16234"} {
		s := newStore(t)
		require.NoError(t, ioutil.WriteFile(s.Path(), []byte(content), 0600))
		_, err := s.Read()
		var cacheErr *cerrors.CacheReadError
		assert.True(t, errors.As(err, &cacheErr), content)
	}
}

func TestParseRecordTrailingNewline(t *testing.T) {
	rec, err := ParseRecord("42 http://10.0.0.5:16234/\n")
	require.NoError(t, err)
	assert.Equal(t, types.JobID(42), rec.JobID)
}
