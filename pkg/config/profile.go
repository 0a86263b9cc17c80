// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is the site profile file. Every field is optional, only the values
// that are set override the defaults.
type Profile struct {
	JobName               string        `yaml:"job_name"`
	Account               string        `yaml:"account"`
	TmpDir                string        `yaml:"tmp_dir"`
	CachePath             string        `yaml:"cache_path"`
	SqueueCommand         string        `yaml:"squeue_command"`
	SbatchCommand         string        `yaml:"sbatch_command"`
	GPUPartition          string        `yaml:"gpu_partition"`
	CUDAModule            string        `yaml:"cuda_module"`
	GPUMaxDuration        time.Duration `yaml:"gpu_max_duration"`
	Reservation           string        `yaml:"reservation"`
	ReservationPartitions []string      `yaml:"reservation_partitions"`
	ReservationMaxRAMMB   int           `yaml:"reservation_max_ram_mb"`
	ReservationMaxCPUs    int           `yaml:"reservation_max_cpus"`
	ContainerEnv          string        `yaml:"container_env"`
	StarterScript         string        `yaml:"starter_script"`
	TutorialsSource       string        `yaml:"tutorials_source"`
	TutorialsDir          string        `yaml:"tutorials_dir"`
	LoginHost             string        `yaml:"login_host"`
	DenyList              []string      `yaml:"deny_list"`
	PollInterval          time.Duration `yaml:"poll_interval"`
	QueueTimeout          time.Duration `yaml:"queue_timeout"`
	KeepFiles             *bool         `yaml:"keep_files"`
}

// Apply overrides cfg with the fields set in the profile.
func (p Profile) Apply(cfg *Config) {
	setString(&cfg.JobName, p.JobName)
	setString(&cfg.Account, p.Account)
	setString(&cfg.TmpDir, p.TmpDir)
	setString(&cfg.CachePath, p.CachePath)
	setString(&cfg.SqueueCommand, p.SqueueCommand)
	setString(&cfg.SbatchCommand, p.SbatchCommand)
	setString(&cfg.GPUPartition, p.GPUPartition)
	setString(&cfg.CUDAModule, p.CUDAModule)
	setString(&cfg.Reservation, p.Reservation)
	setString(&cfg.ContainerEnv, p.ContainerEnv)
	setString(&cfg.StarterScript, p.StarterScript)
	setString(&cfg.TutorialsSource, p.TutorialsSource)
	setString(&cfg.TutorialsDir, p.TutorialsDir)
	setString(&cfg.LoginHost, p.LoginHost)
	if p.GPUMaxDuration > 0 {
		cfg.GPUMaxDuration = p.GPUMaxDuration
	}
	if p.PollInterval > 0 {
		cfg.PollInterval = p.PollInterval
	}
	if p.QueueTimeout > 0 {
		cfg.QueueTimeout = p.QueueTimeout
	}
	if p.ReservationMaxRAMMB > 0 {
		cfg.ReservationMaxRAMMB = p.ReservationMaxRAMMB
	}
	if p.ReservationMaxCPUs > 0 {
		cfg.ReservationMaxCPUs = p.ReservationMaxCPUs
	}
	if p.ReservationPartitions != nil {
		parts := append([]string(nil), p.ReservationPartitions...)
		sort.Strings(parts)
		cfg.ReservationPartitions = parts
	}
	if p.DenyList != nil {
		cfg.DenyList = append([]string(nil), p.DenyList...)
	}
	if p.KeepFiles != nil {
		cfg.KeepFiles = *p.KeepFiles
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Load returns the default configuration overridden by the profile file at
// filename. An empty filename returns the defaults.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	r, err := os.Open(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read file '%s': %v", filename, err)
	}
	defer r.Close()
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("failed to read file: %w", err)
	}
	return parseProfile(cfg, data)
}

func parseProfile(cfg Config, data []byte) (Config, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	p.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
