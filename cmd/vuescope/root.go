package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"vuescope/internal/core/app"
	"vuescope/internal/core/config"
	"vuescope/internal/query"
	"vuescope/internal/shared/observability"
	"vuescope/internal/shared/util"
	"vuescope/internal/ui/report"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "vuescope.toml"

type cliOptions struct {
	configPath  string
	projectRoot string
	format      string
	verbose     bool
}

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	opts   cliOptions
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
	cfg    *config.Config
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "vuescope",
		Short:         "Static analysis and codemods for Vue single-file components",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.configPath, "config", "", "Path to config file (default ./"+defaultConfigPath+" when present)")
	flags.StringVar(&c.opts.projectRoot, "project", "", "Project root, overrides paths.project_root")
	flags.StringVar(&c.opts.format, "format", "text", "Output format: text, tsv or sarif")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		c.findCommand(),
		c.clickNativeCommand(),
		c.nonPropBindingsCommand(),
		c.missingEmitsCommand(),
		c.routerLinkAttrsCommand(),
		c.templateVForCommand(),
		c.teleportTargetsCommand(),
		c.graphCommand(),
		c.watchCommand(),
	)
	return root
}

func (c *cli) setup() error {
	level := slog.LevelInfo
	if c.opts.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(c.logger)

	cfg, err := loadConfig(c.opts.configPath)
	if err != nil {
		c.logger.Error("failed to load config", "error", err)
		return err
	}
	if c.opts.projectRoot != "" {
		cfg.Paths.ProjectRoot = c.opts.projectRoot
	}
	switch c.opts.format {
	case "text", "tsv", "sarif":
	default:
		return fmt.Errorf("unknown format %q", c.opts.format)
	}
	c.cfg = cfg
	return nil
}

// loadConfig reads path, or ./vuescope.toml when path is empty and the file
// exists, or falls back to the defaults plus environment overrides.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			return config.FromEnv()
		}
		path = defaultConfigPath
	}
	return config.Load(path)
}

// taskFunc runs one query against a prepared service.
type taskFunc func(ctx context.Context, svc *query.Service) (*query.Result, error)

// session is one analysis run with its observability hooks installed.
type session struct {
	app      *app.App
	shutdown func(context.Context) error
	server   *observabilityServer
}

func (c *cli) open(ctx context.Context) (*session, error) {
	a, err := app.New(c.cfg, app.Cwd(), c.logger)
	if err != nil {
		return nil, err
	}
	obs := c.cfg.Observability
	shutdown, err := observability.SetupTracing(ctx, obs.OTLPEndpoint, obs.ServiceName)
	if err != nil {
		return nil, err
	}
	s := &session{app: a, shutdown: shutdown}
	if obs.MetricsAddress != "" {
		s.server = newObservabilityServer(obs.MetricsAddress, a.RunID)
		if err := s.server.Start(); err != nil {
			_ = shutdown(ctx)
			return nil, err
		}
	}
	return s, nil
}

func (s *session) close(ctx context.Context) {
	if s.server != nil {
		_ = s.server.Stop(ctx)
	}
	if err := s.shutdown(ctx); err != nil {
		s.app.Logger().Warn("tracing shutdown failed", "error", err)
	}
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// renderFunc writes a finished result.
type renderFunc func(a *app.App, res *query.Result) error

// runTask opens a session, runs task once and prints the result.
func (c *cli) runTask(cmd *cobra.Command, task taskFunc, opts ...query.Option) error {
	return c.runTaskWith(cmd, task, c.print, opts...)
}

func (c *cli) runTaskWith(cmd *cobra.Command, task taskFunc, render renderFunc, opts ...query.Option) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.close(context.Background())

	res, err := task(ctx, query.NewService(s.app, opts...))
	if err != nil {
		return err
	}
	if err := render(s.app, res); err != nil {
		return err
	}
	if len(res.FixFailures) > 0 {
		return fmt.Errorf("%d file(s) could not be fixed", len(res.FixFailures))
	}
	return res.Report.Err()
}

func (c *cli) print(a *app.App, res *query.Result) error {
	name := displayName(a)
	switch c.opts.format {
	case "tsv":
		_, err := io.WriteString(c.out, report.TSV(res, name))
		return err
	case "sarif":
		data, err := report.SARIF(res, a.Paths.ProjectRoot, version)
		if err != nil {
			return err
		}
		_, err = c.out.Write(append(data, '\n'))
		return err
	}
	if err := report.Text(c.out, res, name); err != nil {
		return err
	}
	for _, path := range util.SortedStringKeys(res.Previews) {
		if _, err := io.WriteString(c.out, res.Previews[path]); err != nil {
			return err
		}
	}
	return nil
}

// displayName shortens absolute paths and "path:line:col" locations to
// project-relative form.
func displayName(a *app.App) func(string) string {
	root := a.Paths.ProjectRoot + string(filepath.Separator)
	return func(s string) string {
		if rest, ok := strings.CutPrefix(s, root); ok {
			return filepath.ToSlash(rest)
		}
		return s
	}
}
