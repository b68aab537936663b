package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/sunflower-search/sunflower/pkg/config"
	"github.com/sunflower-search/sunflower/pkg/family"
	"github.com/sunflower-search/sunflower/pkg/metrics"
	"github.com/sunflower-search/sunflower/pkg/search"
	"github.com/sunflower-search/sunflower/pkg/search/anneal"
)

type annealOptions struct {
	temperature float64
	cooling     float64
	interval    int
}

func newAnnealCmd(o *options) *cobra.Command {
	ao := annealOptions{}
	cmd := &cobra.Command{
		Use:   "anneal",
		Short: "Drive a random family toward zero 3-sunflowers by simulated annealing",
		Long:  `Runs simulated annealing over families of the target size. Only k=3 is supported. A run that does not reach zero energy is inconclusive; the best family seen is still written.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.params(cmd, config.DefaultAnneal())
			if err != nil {
				return err
			}
			return o.runAnneal(cmd, p, ao)
		},
	}

	addParamFlags(cmd.Flags(), o, config.DefaultAnneal())
	cmd.Flags().Int("steps", config.DefaultSteps, "maximum number of proposed moves")
	cmd.Flags().Float64Var(&ao.temperature, "temperature", anneal.DefaultTemperature, "initial temperature")
	cmd.Flags().Float64Var(&ao.cooling, "cooling", anneal.DefaultCooling, "multiplicative cooling factor per step")
	cmd.Flags().IntVar(&ao.interval, "progress-interval", anneal.DefaultProgressInterval, "log progress every this many steps")
	return cmd
}

func (o *options) runAnneal(cmd *cobra.Command, p config.Params, ao annealOptions) error {
	// progress arrives every interval steps; keep the info log readable
	report := rate.Sometimes{First: 1, Interval: 5 * time.Second}
	a, err := anneal.New(p,
		anneal.WithLogger(o.logger),
		anneal.WithTemperature(ao.temperature),
		anneal.WithCooling(ao.cooling),
		anneal.WithProgressInterval(ao.interval),
		anneal.WithMoveHook(func(m anneal.Move) {
			metrics.EmitMove(m.Accepted, m.Energy)
		}),
		anneal.WithProgress(func(pr anneal.Progress) {
			metrics.EmitBestEnergy(pr.Best)
			report.Do(func() {
				o.logger.WithFields(logrus.Fields{
					"step":    pr.Step,
					"energy":  pr.Energy,
					"best":    pr.Best,
					"elapsed": pr.Elapsed.Round(time.Second),
				}).Info("annealing progress")
			})
		}),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := a.Run(cmd.Context())
	metrics.EmitOutcome("anneal", err)
	if err == nil {
		metrics.RegisterSearchSuccess(time.Since(start))
	} else {
		metrics.RegisterSearchFailure(time.Since(start))
	}

	var exhausted search.BudgetExhausted
	switch {
	case err == nil:
		fmt.Fprintf(cmd.OutOrStdout(), "SUCCESS after %d steps:\n", result.Steps)
		return o.save(cmd, family.New(p.N, p.K, p.U, "anneal", result.Family))
	case errors.As(err, &exhausted):
		metrics.EmitBestEnergy(result.BestEnergy)
		fmt.Fprintf(cmd.OutOrStdout(), "FAILURE: best energy %d after %d steps:\n", result.BestEnergy, result.Steps)
		if saveErr := o.save(cmd, family.New(p.N, p.K, p.U, "anneal", result.Best)); saveErr != nil {
			return saveErr
		}
		return err
	default:
		return err
	}
}
