package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/runner"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
)

type runFlags struct {
	scenarios  []string
	engine     string
	retries    int
	parallel   int
	report     string
	noProgress bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scenarios against the configured deployment",
		Example: `  hrmsuite run
  hrmsuite run -s 'admin/*' --browser firefox --parallel 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("browser") {
				a.cfg.Browser.Engine = f.engine
			}
			if cmd.Flags().Changed("retries") {
				a.cfg.Runner.Retries = f.retries
			}
			if cmd.Flags().Changed("parallel") {
				a.cfg.Runner.Parallel = f.parallel
			}
			if cmd.Flags().Changed("report") {
				a.cfg.Runner.ReportFile = f.report
			}
			if err := a.revalidate(); err != nil {
				return err
			}

			scenarios, err := runner.Select(runner.Catalog(), f.scenarios...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var bar *progressbar.ProgressBar
			var extra []runner.Option
			if !f.noProgress {
				bar = newProgressBar(cmd.ErrOrStderr(), len(scenarios))
				extra = append(extra, runner.WithProgress(func(res domain.ScenarioResult) {
					bar.Describe(res.Name)
					_ = bar.Add(1)
				}))
			}

			s, err := a.buildSuite(ctx, extra...)
			if err != nil {
				return err
			}
			defer s.Close()

			report, runErr := s.runner.Run(ctx, scenarios)
			if bar != nil {
				_ = bar.Finish()
			}
			if report != nil {
				printSummary(cmd.OutOrStdout(), report)
			}
			if runErr != nil {
				return runErr
			}
			if !report.Succeeded() {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&f.scenarios, "scenario", "s", nil, "scenario name or glob, repeatable (default all)")
	cmd.Flags().StringVar(&f.engine, "browser", "", "browser engine: chromium, firefox or webkit")
	cmd.Flags().IntVar(&f.retries, "retries", 0, "extra attempts after a failed scenario")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "scenarios running at once")
	cmd.Flags().StringVar(&f.report, "report", "", "write the JSON run report to this file")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("   Running scenarios..."),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func statusColor(s domain.ScenarioStatus) *color.Color {
	switch s {
	case domain.ScenarioPassed:
		return green
	case domain.ScenarioFlaky:
		return yellow
	case domain.ScenarioFailed:
		return red
	default:
		return dim
	}
}

func printSummary(w io.Writer, report *domain.RunReport) {
	fmt.Fprintln(w)
	bold.Fprintf(w, "Run %s", report.ID)
	dim.Fprintf(w, "  %s against %s\n\n", report.Engine, report.BaseURL)

	for _, res := range report.Results {
		statusColor(res.Status).Fprintf(w, "  %-8s", res.Status)
		fmt.Fprintf(w, " %-32s", res.Name)
		dim.Fprintf(w, " %d attempt(s) %s\n", res.Attempts, res.Duration.Round(time.Millisecond))
		if res.Error != "" {
			red.Fprintf(w, "           %s: %s\n", res.ErrorCode, res.Error)
		}
		if res.Screenshot != "" {
			dim.Fprintf(w, "           screenshot: %s\n", res.Screenshot)
		}
	}

	s := report.Summary()
	fmt.Fprintln(w)
	green.Fprintf(w, "%d passed", s.Passed)
	fmt.Fprint(w, ", ")
	yellow.Fprintf(w, "%d flaky", s.Flaky)
	fmt.Fprint(w, ", ")
	red.Fprintf(w, "%d failed", s.Failed)
	fmt.Fprint(w, ", ")
	dim.Fprintf(w, "%d skipped", s.Skipped)
	fmt.Fprintf(w, " in %s\n", report.Duration().Round(time.Millisecond))
}
