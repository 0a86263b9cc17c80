// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package config

import "time"

// DefaultJobName is the label given to every notebook job. It is also how
// the queue inspector recognizes jobs started by this tool.
const DefaultJobName = "straxlab"

// DefaultPollInterval is the time the readiness poller sleeps between two
// reads of the job log.
const DefaultPollInterval = 2 * time.Second

// DefaultReadinessTimeout is the maximum time to wait for the notebook
// server to print its URL once the job has started.
const DefaultReadinessTimeout = 120 * time.Second

// DefaultQueueTimeout is the maximum time to wait for the job log to appear,
// that is for the scheduler to start the job.
const DefaultQueueTimeout = 1 * time.Hour

// DefaultMaxDuration is the wall clock limit requested for CPU jobs.
const DefaultMaxDuration = 24 * time.Hour

// DefaultGPUMaxDuration caps the wall clock limit of GPU jobs.
const DefaultGPUMaxDuration = 2 * time.Hour

// DefaultReservationMaxRAMMB is the largest memory request still eligible
// for the notebook reservation.
const DefaultReservationMaxRAMMB = 16000

// DefaultReservationMaxCPUs is the CPU count from which a request is no
// longer eligible for the notebook reservation.
const DefaultReservationMaxCPUs = 8

// DefaultCacheFileName is the name of the cache file in the home directory.
const DefaultCacheFileName = ".last_jupyter_url"

// DefaultDenyList contains substrings of log lines that mention http but are
// not the notebook endpoint, e.g. container registries pulled at startup.
var DefaultDenyList = []string{
	"sylabs.io",
	"singularity-hub.org",
	"docker.io",
	"ghcr.io",
	"github.com",
	"gitlab.com",
}

// Default returns the configuration for the XENON notebook setup on dali.
func Default() Config {
	return Config{
		JobName:               DefaultJobName,
		Account:               "pi-lgrandi",
		TmpDir:                "/project2/lgrandi/xenonnt/development/.tmp_for_jupyter_job_launcher",
		SqueueCommand:         "squeue",
		SbatchCommand:         "sbatch",
		GPUPartition:          "gpu2",
		CUDAModule:            "cuda/9.1",
		GPUMaxDuration:        DefaultGPUMaxDuration,
		Reservation:           "xenon_notebook",
		ReservationPartitions: []string{"xenon1t", "dali"},
		ReservationMaxRAMMB:   DefaultReservationMaxRAMMB,
		ReservationMaxCPUs:    DefaultReservationMaxCPUs,
		ContainerEnv:          "nt_singularity",
		StarterScript:         "/project2/lgrandi/xenonnt/development/xnt_env",
		TutorialsSource:       "/project2/lgrandi/xenonnt/development/straxen/notebooks/tutorials",
		TutorialsDir:          "strax_tutorials",
		LoginHost:             "dali-login1.rcc.uchicago.edu",
		DenyList:              append([]string(nil), DefaultDenyList...),
		PollInterval:          DefaultPollInterval,
		QueueTimeout:          DefaultQueueTimeout,
	}
}
