package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/tvgl/config"
	"github.com/katalvlaran/tvgl/network"
)

// solveFlags holds the flags of one solve invocation.
type solveFlags struct {
	verbose    bool
	outputPath string
	plotPath   string
	solverName string
	workers    int
	threshold  float64
}

// newRootCmd builds the command tree with its own flag storage.
func newRootCmd() *cobra.Command {
	var f solveFlags

	rootCmd := &cobra.Command{
		Use:   "tvgl",
		Short: "Time-varying graphical lasso",
		Long: `tvgl estimates a sequence of sparse precision matrices that change
smoothly over time, with forward-backward or lag-consensus ADMM solvers.`,
		SilenceUsage: true,
	}
	solveCmd := &cobra.Command{
		Use:   "solve [problem.yaml]",
		Short: "Solves a problem file and prints the result as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], f)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "Log every convergence check.")
	solveCmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "Write the result to this file instead of stdout.")
	solveCmd.Flags().StringVar(&f.plotPath, "plot", "", "Write the convergence history as a PNG.")
	solveCmd.Flags().StringVar(&f.solverName, "solver", "", "Override the problem's solver (fb, kernel, latent, ising).")
	solveCmd.Flags().IntVar(&f.workers, "workers", 0, "Bound per-slice parallelism (0 uses every CPU).")
	solveCmd.Flags().Float64Var(&f.threshold, "threshold", 0, "Report |K_ij| above this value as network edges.")
	rootCmd.AddCommand(solveCmd)

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runSolve(cmd *cobra.Command, path string, f solveFlags) error {
	logger := newLogger(cmd.ErrOrStderr(), f.verbose)

	if err := network.ValidateThreshold(f.threshold); err != nil {
		return fmt.Errorf("--threshold: %w", err)
	}
	p, err := config.Load(path)
	if err != nil {
		return err
	}
	if f.solverName != "" {
		if p.Solver, err = config.ParseSolver(f.solverName); err != nil {
			return err
		}
	}

	rep, err := solve(cmd.Context(), p, logger, f.workers)
	if err != nil {
		return err
	}
	if rep.Networks, err = networks(rep.precision, f.threshold, p.Solver == config.SolverIsing); err != nil {
		return err
	}
	logger.Info("solve finished",
		slog.String("solver", rep.Solver),
		slog.String("status", rep.Status.String()),
		slog.Int("n_iter", rep.NIter),
		slog.String("run_id", rep.RunID),
	)

	out := cmd.OutOrStdout()
	if f.outputPath != "" {
		file, err := os.Create(f.outputPath)
		if err != nil {
			return fmt.Errorf("failed to create the output file: %w", err)
		}
		defer file.Close()
		out = file
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode the result: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if f.plotPath != "" {
		if err := writePlot(f.plotPath, rep.History); err != nil {
			return fmt.Errorf("failed to write the plot: %w", err)
		}
	}

	return nil
}
