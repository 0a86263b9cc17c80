// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

// Package render turns a job request into the text of a Slurm batch script.
// Rendering is a pure function of the request and the configuration: the
// same input always produces the same script. Operator supplied strings are
// trusted and inserted verbatim.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/XENONnT/env-starter/pkg/config"
	"github.com/XENONnT/env-starter/pkg/job"
)

// Renderer renders batch scripts for a site configuration.
type Renderer struct {
	cfg config.Config
}

// New returns a Renderer for cfg.
func New(cfg config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// ReservationEligible returns true if the reservation directive must be
// emitted for req. allowed is false when the caller bypassed reuse, e.g.
// with force-new.
func (r *Renderer) ReservationEligible(req job.Request, allowed bool) bool {
	return allowed &&
		!req.GPU &&
		r.cfg.Reservation != "" &&
		r.cfg.ReservationPartition(req.Partition) &&
		!req.BypassReservation &&
		req.CPUs < r.cfg.ReservationMaxCPUs &&
		req.RAMMB <= r.cfg.ReservationMaxRAMMB
}

// Render returns the batch script for req writing its output to paths.Log.
func (r *Renderer) Render(req job.Request, paths job.Paths, reservationAllowed bool) (job.RenderedJob, error) {
	if err := req.Validate(); err != nil {
		return job.RenderedJob{}, fmt.Errorf("invalid job request: %w", err)
	}
	if paths.Log == "" {
		return job.RenderedJob{}, fmt.Errorf("log path cannot be empty")
	}

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	directive(&b, "--job-name=%s", r.cfg.JobName)
	directive(&b, "--output=%s", paths.Log)
	directive(&b, "--error=%s", paths.Log)
	if r.cfg.Account != "" {
		directive(&b, "--account=%s", r.cfg.Account)
	}
	directive(&b, "--ntasks=1")
	directive(&b, "--cpus-per-task=%d", req.CPUs)
	directive(&b, "--mem-per-cpu=%d", req.MemPerCPU())
	directive(&b, "--time=%s", formatWallTime(req.WallTime(r.cfg.GPUMaxDuration)))

	if req.GPU {
		directive(&b, "--partition=%s", r.cfg.GPUPartition)
		directive(&b, "--gres=gpu:1")
	} else {
		directive(&b, "--qos %s", req.Partition)
		directive(&b, "--partition %s", req.Partition)
		if r.ReservationEligible(req, reservationAllowed) {
			directive(&b, "--reservation=%s", r.cfg.Reservation)
		}
	}
	if len(req.IncludeNodes) > 0 {
		directive(&b, "--nodelist=%s", strings.Join(req.IncludeNodes, ","))
	}
	if len(req.ExcludeNodes) > 0 {
		directive(&b, "--exclude=%s", strings.Join(req.ExcludeNodes, ","))
	}
	for _, extra := range req.ExtraDirectives {
		directive(&b, "%s", extra)
	}

	// sbatch stops reading directives at the first command, so anything
	// executable comes after the directive block.
	b.WriteString("\n")
	if req.GPU && r.cfg.CUDAModule != "" {
		fmt.Fprintf(&b, "module load %s\n\n", r.cfg.CUDAModule)
	}
	b.WriteString("echo Starting jupyter job\n\n")

	if req.Env == r.cfg.ContainerEnv {
		fmt.Fprintf(&b, "%s -j %s 2>&1\n", r.cfg.StarterScript, req.Container)
	} else {
		if req.CondaDir == "" {
			return job.RenderedJob{}, fmt.Errorf("conda directory is required for environment '%s'", req.Env)
		}
		writeCondaPayload(&b, req.CondaDir, req.Env)
	}

	return job.RenderedJob{Paths: paths, Script: b.String()}, nil
}

func directive(b *strings.Builder, format string, args ...interface{}) {
	b.WriteString("#SBATCH ")
	fmt.Fprintf(b, format, args...)
	b.WriteString("\n")
}

func writeCondaPayload(b *strings.Builder, condaDir, env string) {
	fmt.Fprintf(b, `if [ -f "%[1]s/etc/profile.d/conda.sh" ]; then
    echo "Using conda.sh setup"
    . "%[1]s/etc/profile.d/conda.sh"
else
    echo "Using plain PATH conda setup"
    export PATH="%[1]s/bin:$PATH"
fi

%[1]s/bin/conda activate %[2]s
source %[1]s/bin/activate %[2]s

JUP_PORT=$(( 15000 + (RANDOM %%= 5000) ))
JUP_HOST=$(hostname -i)
%[1]s/envs/%[2]s/bin/jupyter notebook --no-browser --port=$JUP_PORT --ip=$JUP_HOST 2>&1
`, condaDir, env)
}

// formatWallTime formats d as the [H]H:MM:SS form accepted by --time.
func formatWallTime(d time.Duration) string {
	total := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
