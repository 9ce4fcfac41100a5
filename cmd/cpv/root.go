package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"cpv/internal/app"
	"cpv/internal/config"
	"cpv/internal/domain"
	appErrors "cpv/internal/errors"
	fsadapter "cpv/internal/infra/fs"
	"cpv/internal/logging"
	"cpv/internal/presentation"
	"cpv/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	terrors "gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

func newRootCmd(stdout, stderr io.Writer, code *int) (*cobra.Command, error) {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "cpv [flags] SOURCE DESTINATION",
		Short: "Copy files and directories with progress",
		Long: `cpv copies a file or a directory tree like cp, showing live progress.

The whole copy is planned before the first byte is written, so usage errors
such as a directory source without -r leave the destination untouched.
Failures of single files are reported at the end without stopping the copy.

Exit status is 0 on success, 1 if any operation failed, 2 for usage or
planning errors and 130 when cancelled.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, args)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidUsage, "args", "", err)
			}
			c, err := execute(cmd.Context(), cfg, stdout, stderr)
			*code = c
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return appErrors.Wrap(appErrors.InvalidUsage, "flags", "", err)
	})
	if err := config.BindFlags(cmd.Flags(), v, app.DefaultBufferSize); err != nil {
		return nil, appErrors.Wrap(appErrors.Internal, "config", "", err)
	}
	return cmd, nil
}

func execute(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) (int, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return appErrors.ExitUsage, appErrors.Wrap(appErrors.InvalidUsage, "log-level", "", err)
	}

	tty := isTerminal(stdout)
	interactive := tty && !cfg.Plain && !cfg.DryRun

	// The progress view owns the terminal, so logs are held back until it
	// has exited.
	var held bytes.Buffer
	logOut := stderr
	if interactive {
		logOut = &held
	}
	logger := logging.New(logOut, level, cfg.Verbose)

	runner := app.NewRunner(fsadapter.NewOS(), logger)
	runner.Executor.BufferSize = cfg.BufferSize
	printer := presentation.Printer{Writer: stdout, Verbose: cfg.Verbose, NoColor: !tty}
	req := cfg.Request()

	switch {
	case cfg.DryRun:
		plan, err := runner.Planner.Plan(ctx, req)
		if err != nil {
			return planFailure(req, err)
		}
		printer.PrintDryRun(plan)
		return appErrors.ExitOK, nil
	case interactive:
		code, err := runInteractive(ctx, runner, req, printer)
		if _, cerr := io.Copy(stderr, &held); cerr != nil && err == nil {
			err = appErrors.Wrap(appErrors.IOFailure, "write", "stderr", cerr)
		}
		return code, err
	default:
		return runPlain(ctx, runner, req, printer, cfg.Verbose, stderr)
	}
}

func runPlain(ctx context.Context, runner *app.Runner, req domain.CopyRequest, printer presentation.Printer, verbose bool, stderr io.Writer) (int, error) {
	var reporter app.Reporter = app.Discard
	if verbose {
		runner.Executor.OnResult = printer.PrintResult
		runner.Applicator.OnResult = printer.PrintResult
		reporter = &presentation.LineReporter{Writer: stderr, Interval: time.Second}
	}

	summary, err := runner.Run(ctx, req, reporter)
	if err != nil {
		return planFailure(req, err)
	}
	printer.PrintSummary(summary)
	return appErrors.SummaryExitCode(summary), nil
}

// runInteractive drives the bubbletea program on one goroutine and the copy
// on another. The program only hears from the copy through Send.
func runInteractive(ctx context.Context, runner *app.Runner, req domain.CopyRequest, printer presentation.Printer) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(tui.NewModel(tui.Config{
		Source:      req.SourcePath,
		Destination: req.DestinationPath,
		Verbose:     req.Verbose,
		Cancel:      cancel,
	}))
	reporter := tui.Reporter{Sender: program}
	runner.Planner.OnProgress = reporter.ScanProgress
	runner.Executor.OnResult = reporter.Result
	runner.Applicator.OnResult = reporter.Result
	runner.OnPlan = reporter.PlanReady

	var (
		summary domain.CopySummary
		planErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		if _, err := program.Run(); err != nil {
			cancel()
			return terrors.Errorf("progress view: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		summary, err = runner.Run(ctx, req, reporter)
		if err != nil {
			planErr = err
			reporter.Fail(err)
			return nil
		}
		reporter.Done(summary)
		return nil
	})
	if err := g.Wait(); err != nil {
		return appErrors.ExitFailures, appErrors.Wrap(appErrors.Internal, "tui", "", err)
	}

	if planErr != nil {
		return planFailure(req, planErr)
	}
	printer.PrintFailures(summary)
	return appErrors.SummaryExitCode(summary), nil
}

func planFailure(req domain.CopyRequest, err error) (int, error) {
	return appErrors.ExitUsage, appErrors.Wrap(appErrors.PlanFailure, "plan", req.SourcePath, err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
