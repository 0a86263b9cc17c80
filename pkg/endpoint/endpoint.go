// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package endpoint parses the URL printed by the notebook server.
package endpoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/XENONnT/env-starter/pkg/cerrors"
)

// Endpoint is where the notebook server of a job listens.
type Endpoint struct {
	Raw  string
	Host string
	Port string
	// TokenSuffix is "?token=<value>" or empty when the URL has no token.
	TokenSuffix string
}

// Parse splits a scheme://host:port/path[?query] string. Anything that does
// not have this shape results in a *cerrors.EndpointParseError.
func Parse(raw string) (Endpoint, error) {
	fail := func(format string, args ...interface{}) (Endpoint, error) {
		return Endpoint{}, &cerrors.EndpointParseError{Endpoint: raw, Reason: fmt.Sprintf(format, args...)}
	}
	if !strings.Contains(raw, "://") {
		return fail("missing scheme")
	}
	segments := strings.Split(raw, "/")
	if len(segments) < 3 || segments[2] == "" {
		return fail("missing host:port")
	}
	hostPort := strings.Split(segments[2], ":")
	if len(hostPort) != 2 {
		return fail("expected host:port, got '%s'", segments[2])
	}
	host, port := hostPort[0], hostPort[1]
	if host == "" {
		return fail("empty host")
	}
	if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
		return fail("invalid port '%s'", port)
	}

	ep := Endpoint{Raw: raw, Host: host, Port: port}
	if strings.Contains(raw, "token") {
		i := strings.Index(raw, "?")
		if i < 0 {
			return fail("token outside of a query string")
		}
		kv := strings.Split(raw[i+1:], "=")
		if len(kv) < 2 {
			return fail("token without value")
		}
		ep.TokenSuffix = "?token=" + kv[1]
	}
	return ep, nil
}

// LocalURL is the URL to open in a browser once the port is forwarded.
func (e Endpoint) LocalURL() string {
	return fmt.Sprintf("http://localhost:%s/%s", e.Port, e.TokenSuffix)
}

// TunnelCommand returns the ssh command forwarding the local port to the
// notebook server through login, authenticating as user.
func (e Endpoint) TunnelCommand(user, login string) string {
	return fmt.Sprintf("ssh -fN -L %[1]s:%[2]s:%[1]s %[3]s@%[4]s", e.Port, e.Host, user, login)
}
