package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vharmon/flowsim/buffer"
	"github.com/vharmon/flowsim/graphio"
	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/latency"
	"github.com/vharmon/flowsim/mapping"
	"github.com/vharmon/flowsim/schedule"
	"github.com/vharmon/flowsim/tsim"
)

type analyseFlags struct {
	throughput bool
	bufferMode bool
	bound      string
	latencyM   bool
	src, dst   string
	derivation string
	scheduleM  bool
	mapMode    bool
	out        string
	format     string
	verbose    bool
	step       bool
}

// newAnalyseCmd wires spec.md §6's "analyse <graph>
// [--throughput|--buffer --bound T|--latency --src A --dst B|--schedule]"
// surface, plus the supplemental --map flow this module adds. *outErr
// receives the run's error so the caller can derive the process exit
// code after cobra's own Execute returns.
func newAnalyseCmd(outErr *error) *cobra.Command {
	var f analyseFlags
	cmd := &cobra.Command{
		Use:   "analyse <graph>",
		Short: "analyse a timed dataflow graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runAnalyse(cmd, args[0], f)
			*outErr = err
			return nil // errors are reported via outErr, not cobra's own exit path
		},
	}

	cmd.Flags().BoolVar(&f.throughput, "throughput", false, "report maximum self-timed throughput")
	cmd.Flags().BoolVar(&f.bufferMode, "buffer", false, "explore the buffer/throughput Pareto front")
	cmd.Flags().StringVar(&f.bound, "bound", "inf", "throughput bound for --buffer, as p/q or inf")
	cmd.Flags().BoolVar(&f.latencyM, "latency", false, "compute source-to-destination latency")
	cmd.Flags().StringVar(&f.src, "src", "", "source actor name, for --latency")
	cmd.Flags().StringVar(&f.dst, "dst", "", "destination actor name, for --latency")
	cmd.Flags().StringVar(&f.derivation, "derivation", "selftimed",
		"latency derivation: unbounded|single|selftimed|maxthroughput")
	cmd.Flags().BoolVar(&f.scheduleM, "schedule", false, "derive a static-periodic schedule")
	cmd.Flags().BoolVar(&f.mapMode, "map", false, "run the full tile/NoC mapping flow (graph must carry a platform)")
	cmd.Flags().StringVar(&f.out, "out", "", "write output to this file instead of stdout")
	cmd.Flags().StringVar(&f.format, "format", "text", "output format for --out: text|dot|html|xml|csdf")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "with --map: log every mapping-flow state transition")
	cmd.Flags().BoolVar(&f.step, "step", false, "step mode: log every mapping-flow state transition")

	return cmd
}

func runAnalyse(cmd *cobra.Command, path string, f analyseFlags) error {
	file, err := os.Open(path)
	if err != nil {
		return graphmodel.NewTaggedError(graphmodel.KindValidation, "flowsim.analyse", err)
	}
	defer file.Close()

	g, platform, err := graphio.ParseGraph(file)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.out != "" {
		outFile, err := os.Create(f.out)
		if err != nil {
			return graphmodel.NewTaggedError(graphmodel.KindValidation, "flowsim.analyse", err)
		}
		defer outFile.Close()
		out = outFile
	}

	switch f.format {
	case "dot":
		return graphio.WriteDOT(out, g, path)
	case "xml":
		return graphio.WriteGraph(out, g, platform)
	case "csdf":
		return graphio.ExportCSDF(out, g)
	}

	rep := graphio.Report{GraphName: path}
	asText := f.format != "html"
	printf := func(format string, args ...interface{}) {
		if asText {
			fmt.Fprintf(out, format, args...)
		}
	}

	switch {
	case f.throughput:
		res, err := tsim.Run(g)
		if err != nil {
			return err
		}
		rep.Throughput = &res.Throughput
		printf("throughput: %s\n", throughputString(res.Throughput))

	case f.bufferMode:
		num, den, infinite, err := parseThroughputBound(f.bound)
		if err != nil {
			return graphmodel.NewTaggedError(graphmodel.KindValidation, "flowsim.analyse", err)
		}
		bound := tsim.Throughput{Num: num, Den: den, Infinite: infinite}
		front, err := buffer.Explore(g, bound)
		if err != nil {
			return err
		}
		rep.Front = front
		for _, set := range front {
			printf("size=%d throughput=%s distributions=%d\n",
				set.Size, throughputString(set.Throughput), len(set.Distributions))
		}

	case f.latencyM:
		srcID, err := findActor(g, f.src)
		if err != nil {
			return err
		}
		dstID, err := findActor(g, f.dst)
		if err != nil {
			return err
		}
		deriv, err := parseDerivation(f.derivation)
		if err != nil {
			return graphmodel.NewTaggedError(graphmodel.KindValidation, "flowsim.analyse", err)
		}
		res, err := latency.Analyze(g, srcID, dstID, deriv)
		if err != nil {
			return err
		}
		printf("latency: %d (throughput %s)\n", res.Latency, throughputString(res.Throughput))

	case f.scheduleM:
		sched, err := schedule.Derive(g)
		if err != nil {
			return err
		}
		rep.Schedule = sched
		printf("period=%d periodicity=%d throughput=%s\n",
			sched.Period, sched.Periodicity, throughputString(sched.Throughput))

	case f.mapMode:
		if platform == nil {
			return graphmodel.NewTaggedError(graphmodel.KindValidation, "flowsim.analyse",
				fmt.Errorf("--map requires a platformGraph in %s", path))
		}
		opts := []mapping.Option{}
		if f.step || f.verbose {
			opts = append(opts, mapping.WithLogger(newLogger(true)))
		}
		res, err := mapping.Run(g, *platform, opts...)
		if err != nil {
			return err
		}
		rep.Mapping = res
		rep.Schedule = res.Schedule
		rep.NoC = res.NoC
		printf("mapping: %s after %d attempt(s), throughput %s\n",
			res.State, res.Attempts, throughputString(res.Throughput))

	default:
		printf("graph %q: %d actors, %d channels\n", path, g.NumActors(), len(g.Channels()))
	}

	if f.format == "html" {
		return graphio.WriteHTML(out, g, rep)
	}
	return nil
}

func throughputString(t tsim.Throughput) string {
	if t.Infinite {
		return "inf"
	}
	return fmt.Sprintf("%d/%d", t.Num, t.Den)
}

func findActor(g *graphmodel.Graph, name string) (int, error) {
	for _, a := range g.Actors() {
		if a.Name == name {
			return a.ID, nil
		}
	}
	return 0, graphmodel.NewTaggedError(graphmodel.KindValidation, "flowsim.analyse",
		fmt.Errorf("actor %q not found", name))
}

func parseDerivation(s string) (latency.Derivation, error) {
	switch s {
	case "unbounded":
		return latency.MinimalUnboundedConcurrency, nil
	case "single":
		return latency.SingleProcessor, nil
	case "selftimed":
		return latency.SelfTimed, nil
	case "maxthroughput":
		return latency.MinimalAtMaxThroughput, nil
	default:
		return 0, fmt.Errorf("unknown derivation %q", s)
	}
}
