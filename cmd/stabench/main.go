// Stabench runs clocked stimulus through the systolic tensor array and checks
// every edge against a reference model.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/sta/pe"
	"github.com/sarchlab/sta/stimulus"
	"github.com/sarchlab/sta/tensor"
	"github.com/sarchlab/sta/verify"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

type options struct {
	policy     tensor.Policy
	parallel   int
	logPath    string
	reportPath string
	monitor    bool
	dumpState  bool

	size, width int
	edges       int
	seed        int64
	savePath    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "stabench",
		Short:         "Run stimulus through the systolic tensor array",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := pe.LevelTrace
			if opts.dumpState {
				level = slog.LevelDebug
			}

			return setupLogging(opts.logPath, level)
		},
	}

	flags := root.PersistentFlags()
	flags.Var(&opts.policy, "policy",
		"operand delivery policy (broadcast or chained), overrides the file")
	flags.IntVar(&opts.parallel, "parallel", 0,
		"number of rows staged concurrently, 0 stages serially")
	flags.StringVar(&opts.logPath, "log", "stabench.json.log",
		"trace log file")
	flags.StringVar(&opts.reportPath, "report", "",
		"write the verification report to this file instead of stdout")
	flags.BoolVar(&opts.monitor, "monitor", false,
		"start the akita monitoring server")
	flags.BoolVar(&opts.dumpState, "dump-state", false,
		"log every PE state after a mismatching edge")

	root.AddCommand(
		scenariosCmd(opts),
		runCmd(opts),
		randomCmd(opts),
	)

	return root
}

func scenariosCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Run the built-in reference scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRunner(opts, cmd)

			var files []*stimulus.File
			for _, name := range stimulus.BuiltinNames() {
				f, err := stimulus.Builtin(name)
				if err != nil {
					return err
				}

				files = append(files, f)
			}

			return r.runAll(files)
		},
	}
}

func runCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE...",
		Short: "Run stimulus files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRunner(opts, cmd)

			var files []*stimulus.File
			for _, path := range args {
				f, err := stimulus.Load(path)
				if err != nil {
					return err
				}

				files = append(files, f)
			}

			return r.runAll(files)
		},
	}
}

func randomCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Run random edges and compare against the reference model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRunner(opts, cmd)

			if opts.size <= 0 || opts.width <= 0 || opts.edges <= 0 {
				return fmt.Errorf("%w: size, width and edges must be positive",
					tensor.ErrInvalidConfig)
			}

			f := randomStimulus(opts.size, opts.width, opts.edges, opts.seed)

			if opts.savePath != "" {
				if err := f.Save(opts.savePath); err != nil {
					return err
				}
			}

			return r.runAll([]*stimulus.File{f})
		},
	}

	cmd.Flags().IntVar(&opts.size, "size", 4, "array size N")
	cmd.Flags().IntVar(&opts.width, "width", 4, "vector width")
	cmd.Flags().IntVar(&opts.edges, "edges", 64, "number of edges")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.savePath, "save", "",
		"also write the generated stimulus to this file")

	return cmd
}

func newRunner(opts *options, cmd *cobra.Command) *runner {
	r := &runner{
		parallel: opts.parallel,
		out:      cmd.OutOrStdout(),
	}

	if cmd.Flags().Changed("policy") {
		p := opts.policy
		r.policy = &p
	}

	if opts.monitor {
		r.monitor = monitoring.NewMonitor()
	}

	r.reportPath = opts.reportPath

	return r
}

func setupLogging(path string, level slog.Level) error {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	atexit.Register(func() {
		logFile.Close()
	})

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	return nil
}

// failed reports a run whose results did not all match.
type failed struct {
	reports []*verify.Report
}

func (f failed) Error() string {
	n := 0
	for _, r := range f.reports {
		n += r.Failed()
	}

	return fmt.Sprintf("%d checks failed", n)
}
