package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sunflower-search/sunflower/pkg/config"
	"github.com/sunflower-search/sunflower/pkg/family"
	"github.com/sunflower-search/sunflower/pkg/metrics"
	"github.com/sunflower-search/sunflower/pkg/search"
	"github.com/sunflower-search/sunflower/pkg/search/exact"
	"github.com/sunflower-search/sunflower/pkg/solver"
	"github.com/sunflower-search/sunflower/pkg/sunflower"
	"github.com/sunflower-search/sunflower/pkg/universe"
)

func newExactCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exact",
		Short: "Find a sunflower-free family of the target size or prove none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.params(cmd, config.Default())
			if err != nil {
				return err
			}
			if err := p.ValidateExact(); err != nil {
				return err
			}
			return o.runExact(cmd, p)
		},
	}

	addParamFlags(cmd.Flags(), o, config.Default())
	cmd.Flags().Int("max-batches", config.DefaultMaxBatches, "maximum number of solve-detect-block rounds")
	cmd.Flags().String("solver", config.DefaultSolver, fmt.Sprintf("solver backend, one of %v", solver.Backends()))
	cmd.Flags().Int("workers", 0, "detect sunflowers with this many goroutines (0 runs sequentially)")
	cmd.Flags().BoolVar(&o.trace, "trace", false, "print every solver call and batch to stderr")
	return cmd
}

func (o *options) runExact(cmd *cobra.Command, p config.Params) error {
	idx, err := universe.NewIndex(p.N, p.U, universe.WithLogger(o.logger))
	if err != nil {
		return err
	}

	var solverOpts []solver.Option
	searchOpts := []exact.Option{
		exact.WithLogger(o.logger),
		exact.WithMaxBatches(p.MaxBatches),
		exact.WithBatchHook(func(b exact.Batch) {
			metrics.EmitBatch(len(b.Sunflowers), b.SolveTime)
		}),
	}
	if o.trace {
		solverOpts = append(solverOpts, solver.WithTracer(solver.LoggingTracer{Writer: cmd.ErrOrStderr()}))
		searchOpts = append(searchOpts, exact.WithTracer(exact.LoggingTracer{Writer: cmd.ErrOrStderr()}))
	}
	s, err := solver.New(p.Solver, solverOpts...)
	if err != nil {
		return err
	}

	detector := sunflower.NewDetector(idx, sunflower.WithWorkers(p.Workers))
	searcher := exact.NewInstrumentedSearcher(
		exact.New(idx, detector, s, searchOpts...),
		metrics.RegisterSearchSuccess,
		metrics.RegisterSearchFailure,
	)

	result, err := searcher.Search(cmd.Context(), p.M, p.K)
	metrics.EmitOutcome("exact", err)
	if err != nil {
		var infeasible search.Infeasible
		if errors.As(err, &infeasible) {
			fmt.Fprintln(cmd.OutOrStdout(), infeasible.Error())
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found family (%d batches, %d sunflowers blocked, %s):\n", result.Batches, result.Blocked, result.Elapsed)
	return o.save(cmd, family.New(p.N, p.K, p.U, "exact", result.Sets))
}

// save prints the family and writes it to the output file.
func (o *options) save(cmd *cobra.Command, f *family.Family) error {
	sets, err := f.Masks()
	if err != nil {
		return err
	}
	for _, s := range sets {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}

	path := o.output
	if path == "" {
		path = family.FileName(f.N, f.K, f.M)
	}
	if err := f.Save(path); err != nil {
		return err
	}
	o.logger.Infof("Saved to %s", path)
	return nil
}
