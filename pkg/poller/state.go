// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package poller

import (
	"strings"
	"time"
)

// Outcome is the result of a poll so far.
type Outcome int

// Possible outcomes.
const (
	Pending Outcome = iota
	Found
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "Pending"
	case Found:
		return "Found"
	case TimedOut:
		return "TimedOut"
	}
	return "Unknown"
}

// State is the state of a readiness poll.
type State struct {
	// Elapsed is the time spent sleeping between reads.
	Elapsed time.Duration
	// Watermark is the number of log lines already surfaced.
	Watermark int
	Outcome   Outcome
	// Endpoint is the raw endpoint when Outcome is Found.
	Endpoint string
	// Log is the log content seen by the last step.
	Log string
}

// Step advances s with the full content of the log as read now. It returns
// the new state and the complete lines that were not surfaced before.
// Every complete line is scanned, not only the new ones: the first line
// mentioning http that does not contain any of the deny-listed substrings
// is the endpoint line, and its last token the endpoint.
//
// A trailing line without newline is still being written and is neither
// surfaced nor scanned.
func Step(s State, content string, denyList []string) (State, []string) {
	next := s
	next.Log = content
	if s.Outcome != Pending {
		return next, nil
	}

	lines := completeLines(content)
	var fresh []string
	if len(lines) > s.Watermark {
		fresh = lines[s.Watermark:]
		next.Watermark = len(lines)
	}
	for _, line := range lines {
		if !isEndpointLine(line, denyList) {
			continue
		}
		fields := strings.Fields(line)
		next.Outcome = Found
		next.Endpoint = fields[len(fields)-1]
		break
	}
	return next, fresh
}

// Flush scans the trailing line of the last content seen as if it were
// complete. It is meant for the last read, once the writer is no longer
// waited for.
func Flush(s State, denyList []string) (State, []string) {
	if s.Log == "" || strings.HasSuffix(s.Log, "\n") {
		return s, nil
	}
	next, fresh := Step(s, s.Log+"\n", denyList)
	next.Log = s.Log
	return next, fresh
}

func completeLines(content string) []string {
	end := strings.LastIndex(content, "\n")
	if end < 0 {
		return nil
	}
	return strings.Split(content[:end], "\n")
}

func isEndpointLine(line string, denyList []string) bool {
	if !strings.Contains(line, "http") {
		return false
	}
	for _, deny := range denyList {
		if deny != "" && strings.Contains(line, deny) {
			return false
		}
	}
	return true
}
