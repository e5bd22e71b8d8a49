package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vharmon/flowsim/graphmodel"
)

// exitCode turns any error flowsim's engine can produce into spec.md §6's
// exit-code contract: 0 success, 1 validation error, 2 failure to
// satisfy a constraint.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var te *graphmodel.TaggedError
	if errors.As(err, &te) && te.Kind == graphmodel.KindInfeasibleConstraint {
		return 2
	}
	return 1
}

// run builds the command tree, executes it against args, and returns the
// process exit code — separated from main so tests can exercise it
// without calling os.Exit.
func run(args []string) int {
	var analyzeErr error

	root := &cobra.Command{
		Use:           "flowsim",
		Short:         "analysis and resource-allocation toolbox for timed dataflow graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyseCmd(&analyzeErr))
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "flowsim:", err)
		return exitCode(err)
	}
	if analyzeErr != nil {
		fmt.Fprintln(os.Stderr, "flowsim:", analyzeErr)
	}
	return exitCode(analyzeErr)
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// parseThroughputBound accepts "p/q" or "inf", mirroring
// graphio.formatThroughput's own rendering of a Throughput.
func parseThroughputBound(s string) (num, den int64, infinite bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "inf" {
		return 0, 0, true, nil
	}
	parts := strings.SplitN(s, "/", 2)
	num, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid throughput bound %q: %w", s, err)
	}
	den = int64(1)
	if len(parts) == 2 {
		den, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, false, fmt.Errorf("invalid throughput bound %q: %w", s, err)
		}
	}
	return num, den, false, nil
}
