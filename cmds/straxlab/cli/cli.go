// Copyright (c) Facebook, Inc. and its affiliates.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	shellquote "github.com/kballard/go-shellquote"
	flag "github.com/spf13/pflag"

	"github.com/XENONnT/env-starter/pkg/cache"
	"github.com/XENONnT/env-starter/pkg/config"
	"github.com/XENONnT/env-starter/pkg/execution"
	"github.com/XENONnT/env-starter/pkg/hostenv"
	"github.com/XENONnT/env-starter/pkg/job"
	"github.com/XENONnT/env-starter/pkg/logging"
	"github.com/XENONnT/env-starter/pkg/poller"
	"github.com/XENONnT/env-starter/pkg/queue"
	"github.com/XENONnT/env-starter/pkg/reconciler"
	"github.com/XENONnT/env-starter/pkg/render"
	"github.com/XENONnT/env-starter/pkg/report"
	"github.com/XENONnT/env-starter/pkg/submit"
	"github.com/XENONnT/env-starter/pkg/tutorials"
)

const (
	defaultPartition = "xenon1t"
	defaultContainer = "osgvo-xenon:latest"
	defaultRAMMB     = 4480
	inferCondaPath   = "<INFER>"
)

var (
	flagSet               *flag.FlagSet
	flagPartition         *string
	flagTimeout           *int
	flagCPU               *int
	flagRAM               *int
	flagGPU               *bool
	flagMaxDuration       *time.Duration
	flagEnv               *string
	flagContainer         *string
	flagCondaPath         *string
	flagNodes             *[]string
	flagExclude           *[]string
	flagSbatchArgs        *string
	flagForceNew          *bool
	flagBypassReservation *bool
	flagCopyTutorials     *bool
	flagConfig            *string
	flagLogLevel          *string
	flagOutput            *string
	flagKeepFiles         *bool
)

func initFlags(cmd string) {
	flagSet = flag.NewFlagSet(cmd, flag.ContinueOnError)
	// --copy_tutorials and friends are accepted for compatibility.
	flagSet.SetNormalizeFunc(func(f *flag.FlagSet, name string) flag.NormalizedName {
		return flag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	flagPartition = flagSet.StringP("partition", "p", defaultPartition, "Partition to use. Try dali, broadwl, or xenon1t.")
	flagTimeout = flagSet.IntP("timeout", "t", 120, "Seconds to wait for the jupyter server to start")
	flagCPU = flagSet.Int("cpu", 1, "Number of CPUs to request")
	flagRAM = flagSet.Int("ram", defaultRAMMB, "MB of RAM to request")
	flagGPU = flagSet.Bool("gpu", false, "Request to run on a GPU partition. Limits runtime to 2 hours.")
	flagMaxDuration = flagSet.Duration("max-duration", config.DefaultMaxDuration, "Wall clock limit of the job")
	flagEnv = flagSet.String("env", "nt_singularity", "Environment to activate. The container environment loads the XENONnT singularity container, anything else is passed to 'conda activate'.")
	flagContainer = flagSet.String("container", defaultContainer, "Singularity container to load")
	flagCondaPath = flagSet.String("conda-path", inferCondaPath, "For non-singularity environments, path to the conda binary to use. Default is to infer it from $PATH.")
	flagNodes = flagSet.StringSlice("node", nil, "Only run on these nodes")
	flagExclude = flagSet.StringSlice("exclude", nil, "Never run on these nodes")
	flagSbatchArgs = flagSet.String("sbatch-args", "", "Extra sbatch directives, e.g. '--constraint=v100 --mail-type=END'")
	flagForceNew = flagSet.BoolP("force-new", "f", false, "Submit a new job even if one is already running")
	flagBypassReservation = flagSet.Bool("bypass-reservation", false, "Never use the notebook reservation")
	flagCopyTutorials = flagSet.Bool("copy-tutorials", false, "Copy tutorials to ~/strax_tutorials (if it does not exist)")
	flagConfig = flagSet.StringP("config", "c", "", "YAML site profile overriding the defaults")
	flagLogLevel = flagSet.StringP("log-level", "l", "info", "Log level: debug, info, warning, error")
	flagOutput = flagSet.StringP("output", "o", "text", "Output format: text or json")
	flagKeepFiles = flagSet.Bool("keep-files", false, "Keep the job script and log once the server is up")

	flagSet.Usage = func() {
		fmt.Fprintf(flagSet.Output(),
			`Usage:

  %s [flags]

Start a strax jupyter notebook server on the batch queue, or reconnect to
the one that is already running.

Flags:
`, cmd)
		flagSet.PrintDefaults()
	}
}

// Env is the host the command runs on.
type Env struct {
	Host hostenv.HostEnv
	// Runner executes squeue and sbatch. Nil means the local host.
	Runner execution.Runner
}

// Main parses args and starts or reuses a notebook job.
func Main(ctx context.Context, cmd string, args []string, stdout io.Writer, env Env) error {
	initFlags(cmd)
	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}
	if err := logging.SetLevel(*flagLogLevel); err != nil {
		return err
	}
	if *flagOutput != "text" && *flagOutput != "json" {
		return fmt.Errorf("invalid output format '%s'", *flagOutput)
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return err
	}
	if *flagKeepFiles {
		cfg.KeepFiles = true
	}

	start := time.Now()
	res, user, err := run(ctx, cfg, env)
	elapsed := time.Since(start)
	if *flagOutput == "json" {
		var r report.Report
		if err != nil {
			r = report.Failed(err, elapsed)
		} else {
			r = report.New(res, user, cfg.LoginHost, elapsed)
		}
		if werr := report.WriteJSON(stdout, r); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		return err
	}
	return report.WriteText(stdout, report.New(res, user, cfg.LoginHost, elapsed))
}

func run(ctx context.Context, cfg config.Config, env Env) (*reconciler.Result, string, error) {
	user, err := env.Host.Username()
	if err != nil {
		return nil, "", err
	}
	log := logging.AddFields(logging.GetLogger("straxlab"), map[string]interface{}{
		"user":      user,
		"partition": *flagPartition,
	})
	home, err := env.Host.HomeDir()
	if err != nil {
		return nil, user, err
	}

	if *flagCopyTutorials {
		if _, err := tutorials.Copy(cfg.TutorialsSource, filepath.Join(home, cfg.TutorialsDir), log); err != nil {
			return nil, user, err
		}
	}

	req, err := buildRequest(cfg, env.Host, log.Infof)
	if err != nil {
		return nil, user, err
	}

	squeue, err := cfg.SqueueArgv()
	if err != nil {
		return nil, user, err
	}
	sbatch, err := cfg.SbatchArgv()
	if err != nil {
		return nil, user, err
	}
	runner := env.Runner
	if runner == nil {
		runner = execution.NewLocal(logging.GetLogger("execution"))
	}

	rec := &reconciler.Reconciler{
		Queue:     queue.New(runner, squeue, cfg.JobName, logging.GetLogger("queue")),
		Cache:     cache.New(cfg.ResolveCachePath(home)),
		Renderer:  render.New(cfg),
		Submitter: submit.New(runner, sbatch, logging.GetLogger("submit")),
		Poller:    poller.New(cfg.PollInterval, cfg.QueueTimeout, cfg.DenyList, logging.GetLogger("job")),
		NewPaths:  func() job.Paths { return submit.NewPaths(cfg.TmpDir, cfg.JobName) },
		KeepFiles: cfg.KeepFiles,
		Log:       logging.GetLogger("reconciler"),
	}
	res, err := rec.Run(ctx, user, req, time.Duration(*flagTimeout)*time.Second)
	return res, user, err
}

func buildRequest(cfg config.Config, host hostenv.HostEnv, infof func(string, ...interface{})) (job.Request, error) {
	extra, err := shellquote.Split(*flagSbatchArgs)
	if err != nil {
		return job.Request{}, fmt.Errorf("invalid sbatch arguments: %w", err)
	}
	req := job.Request{
		CPUs:              *flagCPU,
		RAMMB:             *flagRAM,
		GPU:               *flagGPU,
		MaxDuration:       *flagMaxDuration,
		Partition:         *flagPartition,
		Env:               *flagEnv,
		Container:         *flagContainer,
		IncludeNodes:      *flagNodes,
		ExcludeNodes:      *flagExclude,
		ExtraDirectives:   extra,
		BypassReservation: *flagBypassReservation,
		ForceNew:          *flagForceNew,
	}
	if req.Env != cfg.ContainerEnv {
		condaPath := *flagCondaPath
		if condaPath == inferCondaPath {
			infof("Autoinferring conda path")
			if condaPath, err = host.LookPath("conda"); err != nil {
				return req, fmt.Errorf("cannot infer conda path, use --conda-path: %w", err)
			}
		}
		// <conda_dir>/bin/conda
		req.CondaDir = filepath.Dir(filepath.Dir(condaPath))
		infof("Using conda from %s instead of singularity container.", req.CondaDir)
	}
	return req, req.Validate()
}
