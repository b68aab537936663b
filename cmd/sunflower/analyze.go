package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunflower-search/sunflower/pkg/analysis"
	"github.com/sunflower-search/sunflower/pkg/family"
)

func newAnalyzeCmd(o *options) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Report sunflowers and spreadness of a produced family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := family.Load(args[0])
			if err != nil {
				return err
			}
			sets, err := f.Masks()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("k") && f.K != 0 {
				k = f.K
			}
			n := f.N
			if n == 0 && len(sets) > 0 {
				n = sets[0].Len()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Analyzing family of size %d from %s\n", len(sets), args[0])
			return analysis.Analyze(sets, n, k).Write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 3, "sunflower size to count; defaults to the one recorded in the file")
	return cmd
}
