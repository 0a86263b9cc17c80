// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package report formats the outcome of an invocation for the operator.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/insomniacslk/xjson"

	"github.com/XENONnT/env-starter/pkg/reconciler"
	"github.com/XENONnT/env-starter/pkg/types"
)

// Report is the machine readable outcome of an invocation.
type Report struct {
	JobID    types.JobID    `json:"job_id,omitempty"`
	Endpoint string         `json:"endpoint,omitempty"`
	Host     string         `json:"host,omitempty"`
	Port     string         `json:"port,omitempty"`
	Token    string         `json:"token,omitempty"`
	LocalURL string         `json:"local_url,omitempty"`
	Tunnel   string         `json:"tunnel,omitempty"`
	Reused   bool           `json:"reused"`
	Reason   string         `json:"reason,omitempty"`
	Orphans  []types.JobID  `json:"orphans,omitempty"`
	Elapsed  xjson.Duration `json:"elapsed"`
	Error    string         `json:"error,omitempty"`
}

// New builds the report of a successful reconciliation. The tunnel goes
// through loginHost as user.
func New(res *reconciler.Result, user, loginHost string, elapsed time.Duration) Report {
	return Report{
		JobID:    res.JobID,
		Endpoint: res.Endpoint.Raw,
		Host:     res.Endpoint.Host,
		Port:     res.Endpoint.Port,
		Token:    res.Endpoint.TokenSuffix,
		LocalURL: res.Endpoint.LocalURL(),
		Tunnel:   res.Endpoint.TunnelCommand(user, loginHost),
		Reused:   res.Reused,
		Reason:   string(res.Reason),
		Orphans:  res.Orphans,
		Elapsed:  xjson.Duration(elapsed),
	}
}

// Failed builds the report of a failed invocation.
func Failed(err error, elapsed time.Duration) Report {
	return Report{
		Elapsed: xjson.Duration(elapsed),
		Error:   err.Error(),
	}
}

// WriteText prints the instructions to reach the notebook server from a
// laptop.
func WriteText(w io.Writer, r Report) error {
	_, err := fmt.Fprintf(w, `
Success! If you have linux, execute the following command on your laptop:

%[1]s && sensible-browser %[2]s

If you have a mac, instead do:

%[1]s && open %[2]s

Happy strax analysis!
`, r.Tunnel, r.LocalURL)
	return err
}

// WriteJSON prints r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", " ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("cannot encode report: %w", err)
	}
	_, err := w.Write(buffer.Bytes())
	return err
}
