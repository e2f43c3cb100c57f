package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sofmeright/docker-build/src/build"
	"github.com/sofmeright/docker-build/src/config"
	"github.com/sofmeright/docker-build/src/docker"
	"github.com/sofmeright/docker-build/src/output"
)

// app holds the state of one invocation. Commands read it instead of
// package-level variables so tests can run them side by side.
type app struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
	log     *logrus.Logger

	stdout    io.Writer
	stderr    io.Writer
	environ   func() []string
	lookupEnv func(string) (string, bool)

	// newRunner builds the process runner for the configured docker binary.
	newRunner func(binary string, log logrus.FieldLogger) docker.Runner

	opts build.Options
}

func newApp() *app {
	return &app{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		environ:   os.Environ,
		lookupEnv: os.LookupEnv,
		newRunner: func(binary string, log logrus.FieldLogger) docker.Runner {
			return docker.NewExecRunner(binary, log)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docker-build -t <tag> -f <file> [-s] [-c] [-q]",
		Short: "Build a container image in CI",
		Long: `Build a container image with docker.

Checks that the daemon is reachable, enables --squash only when the daemon
supports it, warms the layer cache from the registry variables, and runs
docker build with --pull and --compress. Environment variables prefixed
DOCKER_BUILD_ARG_ are passed as build args.

Exit codes: 0 success, 1 usage error, 2 build failed, 3 daemon unreachable.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = newLogger(a.stderr, a.verbose)
			// Skip config loading for commands that don't need it.
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: .docker-build.yml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")

	f := root.Flags()
	f.StringVarP(&a.opts.Tag, "tag", "t", "", "image reference to tag the result with (required)")
	f.StringVarP(&a.opts.Dockerfile, "file", "f", "", "path to the Dockerfile (required)")
	f.BoolVarP(&a.opts.Squash, "squash", "s", false, "squash layers when the daemon supports it")
	f.BoolVarP(&a.opts.Cache, "cache", "c", false, "warm the layer cache from the registry variables")
	f.BoolVarP(&a.opts.Quiet, "quiet", "q", false, "suppress build output")

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.AddCommand(newAuthCmd(a), newVersionCmd(a))
	return root
}

func (a *app) runBuild(ctx context.Context) error {
	opts := a.opts
	opts.ArgPrefix = a.cfg.Build.ArgPrefix
	opts.CacheVariables = a.cfg.Cache.Variables
	opts.CacheConcurrency = a.cfg.Cache.Concurrency
	opts.RevisionLabel = a.cfg.Labels.Revision

	p := &build.Pipeline{
		Docker:    docker.NewClient(a.newRunner(a.cfg.Docker.Binary, a.log)),
		Out:       a.stdout,
		Err:       a.stderr,
		Log:       a.log,
		Color:     output.UseColor(),
		Environ:   a.environ(),
		LookupEnv: a.lookupEnv,
	}
	res, err := p.Run(ctx, opts)
	if res != nil && res.Duration > 0 {
		status := output.StatusSuccess
		if err != nil {
			status = output.StatusFailed
		}
		output.SummaryTotal(a.stdout, res.Duration, status, p.Color)
	}
	return err
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// execute runs the command tree with args and prints any error to stderr.
func execute(ctx context.Context, a *app, args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(a.stderr, "docker-build:", err)
		return err
	}
	return nil
}

// Execute runs the root command. The context is cancelled on SIGINT or
// SIGTERM, which stops any running docker process.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, newApp(), os.Args[1:])
}
