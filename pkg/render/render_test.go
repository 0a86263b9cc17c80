// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XENONnT/env-starter/pkg/config"
	"github.com/XENONnT/env-starter/pkg/job"
)

var paths = job.Paths{Script: "/shared/tmp/straxlab-1.sh", Log: "/shared/tmp/straxlab-1.log"}

func cpuRequest() job.Request {
	return job.Request{
		CPUs:        2,
		RAMMB:       8000,
		MaxDuration: 24 * time.Hour,
		Partition:   "xenon1t",
		Env:         "nt_singularity",
		Container:   "osgvo-xenon:latest",
	}
}

func gpuRequest() job.Request {
	r := cpuRequest()
	r.GPU = true
	return r
}

func render(t *testing.T, req job.Request, allowed bool) string {
	rj, err := New(config.Default()).Render(req, paths, allowed)
	require.NoError(t, err)
	assert.Equal(t, paths, rj.Paths)
	return rj.Script
}

func TestRenderCPUJob(t *testing.T) {
	script := render(t, cpuRequest(), true)
	assert.Equal(t, `#!/bin/bash
#SBATCH --job-name=straxlab
#SBATCH --output=/shared/tmp/straxlab-1.log
#SBATCH --error=/shared/tmp/straxlab-1.log
#SBATCH --account=pi-lgrandi
#SBATCH --ntasks=1
#SBATCH --cpus-per-task=2
#SBATCH --mem-per-cpu=4000
#SBATCH --time=24:00:00
#SBATCH --qos xenon1t
#SBATCH --partition xenon1t
#SBATCH --reservation=xenon_notebook

echo Starting jupyter job

/project2/lgrandi/xenonnt/development/xnt_env -j osgvo-xenon:latest 2>&1
`, script)
}

func TestRenderIsDeterministic(t *testing.T) {
	reqs := []job.Request{cpuRequest(), gpuRequest()}
	conda := cpuRequest()
	conda.Env, conda.CondaDir = "strax", "/opt/miniconda3"
	conda.IncludeNodes = []string{"dali001", "dali002"}
	reqs = append(reqs, conda)
	for _, req := range reqs {
		first := render(t, req, true)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, render(t, req, true))
		}
	}
}

func TestRenderMemPerCPU(t *testing.T) {
	req := cpuRequest()
	req.CPUs, req.RAMMB = 3, 10000
	assert.Contains(t, render(t, req, true), "#SBATCH --mem-per-cpu=3333\n")
}

func TestRenderGPUAndCPUHeadersAreExclusive(t *testing.T) {
	for _, gpu := range []bool{false, true} {
		for _, cpus := range []int{1, 4, 8, 16} {
			for _, partition := range []string{"xenon1t", "dali", "broadwl"} {
				for _, allowed := range []bool{false, true} {
					req := cpuRequest()
					req.GPU, req.CPUs, req.Partition = gpu, cpus, partition
					script := render(t, req, allowed)
					hasGPU := strings.Contains(script, "--gres=gpu:1") || strings.Contains(script, "module load")
					hasCPU := strings.Contains(script, "--qos") || strings.Contains(script, "--reservation")
					assert.Equal(t, gpu, hasGPU)
					assert.False(t, hasGPU && hasCPU)
					if !gpu {
						assert.True(t, hasCPU)
					}
				}
			}
		}
	}
}

func TestRenderGPUJob(t *testing.T) {
	script := render(t, gpuRequest(), true)
	assert.Contains(t, script, "#SBATCH --partition=gpu2\n#SBATCH --gres=gpu:1\n")
	assert.Contains(t, script, "\nmodule load cuda/9.1\n")
	assert.Contains(t, script, "#SBATCH --time=02:00:00\n")
	assert.NotContains(t, script, "--reservation")
}

func TestRenderReservationRule(t *testing.T) {
	for _, tc := range []struct {
		name      string
		mutate    func(r *job.Request)
		allowed   bool
		expectRes bool
	}{
		{"eligible", func(r *job.Request) {}, true, true},
		{"force new", func(r *job.Request) {}, false, false},
		{"dali partition", func(r *job.Request) { r.Partition = "dali" }, true, true},
		{"ineligible partition", func(r *job.Request) { r.Partition = "broadwl" }, true, false},
		{"bypass requested", func(r *job.Request) { r.BypassReservation = true }, true, false},
		{"7 cpus", func(r *job.Request) { r.CPUs = 7 }, true, true},
		{"8 cpus", func(r *job.Request) { r.CPUs = 8 }, true, false},
		{"ram at ceiling", func(r *job.Request) { r.RAMMB = 16000 }, true, true},
		{"ram above ceiling", func(r *job.Request) { r.RAMMB = 16001 }, true, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := cpuRequest()
			tc.mutate(&req)
			assert.Equal(t, tc.expectRes, New(config.Default()).ReservationEligible(req, tc.allowed))
			assert.Equal(t, tc.expectRes, strings.Contains(render(t, req, tc.allowed), "#SBATCH --reservation=xenon_notebook\n"))
		})
	}
}

func TestRenderNodeLines(t *testing.T) {
	script := render(t, cpuRequest(), true)
	assert.NotContains(t, script, "--nodelist")
	assert.NotContains(t, script, "--exclude")

	req := cpuRequest()
	req.IncludeNodes = []string{"dali001", "dali002"}
	req.ExcludeNodes = []string{"dali028"}
	req.ExtraDirectives = []string{"--mail-type=END"}
	script = render(t, req, true)
	assert.Contains(t, script, "#SBATCH --reservation=xenon_notebook\n#SBATCH --nodelist=dali001,dali002\n#SBATCH --exclude=dali028\n#SBATCH --mail-type=END\n\n")
}

func TestRenderCondaPayload(t *testing.T) {
	req := cpuRequest()
	req.Env, req.CondaDir = "strax", "/opt/miniconda3"
	script := render(t, req, true)
	assert.NotContains(t, script, "xnt_env")
	assert.Contains(t, script, `. "/opt/miniconda3/etc/profile.d/conda.sh"`)
	assert.Contains(t, script, "source /opt/miniconda3/bin/activate strax\n")
	assert.Contains(t, script, "JUP_PORT=$(( 15000 + (RANDOM %= 5000) ))\n")
	assert.Contains(t, script, "JUP_HOST=$(hostname -i)\n")
	assert.Contains(t, script, "/opt/miniconda3/envs/strax/bin/jupyter notebook --no-browser --port=$JUP_PORT --ip=$JUP_HOST 2>&1\n")
}

func TestRenderCondaPayloadRequiresCondaDir(t *testing.T) {
	req := cpuRequest()
	req.Env = "strax"
	_, err := New(config.Default()).Render(req, paths, true)
	require.Error(t, err)
}

func TestRenderInvalidRequest(t *testing.T) {
	req := cpuRequest()
	req.CPUs = 0
	_, err := New(config.Default()).Render(req, paths, true)
	require.Error(t, err)
	_, err = New(config.Default()).Render(cpuRequest(), job.Paths{}, true)
	require.Error(t, err)
}

func TestFormatWallTime(t *testing.T) {
	assert.Equal(t, "24:00:00", formatWallTime(24*time.Hour))
	assert.Equal(t, "02:00:00", formatWallTime(2*time.Hour))
	assert.Equal(t, "00:30:15", formatWallTime(30*time.Minute+15*time.Second))
	assert.Equal(t, "36:00:00", formatWallTime(36*time.Hour))
}
