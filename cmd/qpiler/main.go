// qpiler is the command line front end: transpile QASM files for a
// described target, or inspect them.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qpiler"
	"qpiler/circuit"
	"qpiler/passes"
	"qpiler/target"
)

var (
	flagTarget   string
	flagEffort   int
	flagSeed     int64
	flagApprox   float64
	flagDeadline time.Duration
	flagOutput   string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "qpiler",
	Short: "Quantum circuit transpiler",
	Long:  "Rewrites QASM circuits into the native basis and coupling constraints of a hardware target.",
}

var transpileCmd = &cobra.Command{
	Use:   "transpile <circuit.qasm>",
	Short: "Compile a circuit for a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := buildLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		tgt, err := target.LoadYAML(flagTarget)
		if err != nil {
			return err
		}
		c, err := readCircuit(args[0])
		if err != nil {
			return err
		}

		res, err := qpiler.Transpile(context.Background(), c, tgt, qpiler.Options{
			Effort:              flagEffort,
			Seed:                flagSeed,
			ApproximationDegree: flagApprox,
			Deadline:            flagDeadline,
			Logger:              log,
		})
		if err != nil {
			return err
		}

		out := res.Circuit.ToQASM()
		if flagOutput == "" || flagOutput == "-" {
			fmt.Print(out)
		} else if err := os.WriteFile(flagOutput, []byte(out), 0o644); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "target=%s ops=%d depth=%v two_qubit=%v\n",
			tgt.Name, len(res.Circuit.Ops),
			res.Properties[passes.PropDepth], res.Properties[passes.PropTwoQubitOps])
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <circuit.qasm>",
	Short: "Show circuit statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := readCircuit(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("qubits:  %d\n", c.NumQubits)
		fmt.Printf("clbits:  %d\n", c.NumClbits)
		fmt.Printf("ops:     %d\n", len(c.Ops))
		fmt.Printf("depth:   %d\n", c.Depth())
		fmt.Printf("2q ops:  %d\n", c.TwoQubitOps())
		counts := c.CountOps()
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-10s %d\n", name, counts[name])
		}
		return nil
	},
}

func readCircuit(path string) (*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := circuit.ParseQASM(string(data))
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func buildLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func init() {
	transpileCmd.Flags().StringVarP(&flagTarget, "target", "t", "", "target description yaml (required)")
	transpileCmd.Flags().IntVarP(&flagEffort, "effort", "e", 1, "routing effort, 0-3")
	transpileCmd.Flags().Int64Var(&flagSeed, "seed", -1, "random seed, negative for entropy")
	transpileCmd.Flags().Float64Var(&flagApprox, "approx", 1.0, "approximation degree in (0,1]")
	transpileCmd.Flags().DurationVar(&flagDeadline, "deadline", 0, "abort after this duration, 0 for none")
	transpileCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file, default stdout")
	transpileCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	transpileCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(transpileCmd, inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
