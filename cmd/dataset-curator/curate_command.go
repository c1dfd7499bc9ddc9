package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/dataset-curator/internal/curate"
)

func newCurateCommand(ctx *commandContext) *cobra.Command {
	var seed int64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Merge the configured sources into a new deduplicated, split, resized dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				if seed <= 0 {
					return errors.New("--seed must be positive")
				}
				cfg.Seed = seed
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := curate.Run(cmd.Context(), cfg, curate.Options{
				Logger:      logger,
				NewProgress: ctx.progress(cmd),
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, res)
			}
			printCurateSummary(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Shuffle seed overriding the config (positive)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run result as JSON")
	return cmd
}

func printCurateSummary(out io.Writer, res *curate.Result) {
	rows := make([][]string, 0, len(res.Splits)+1)
	for _, s := range res.Splits {
		rows = append(rows, []string{s.Name, strconv.Itoa(s.Assigned), strconv.Itoa(s.Written), strconv.Itoa(s.Skipped)})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Split", "Assigned", "Written", "Skipped"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "Collected pairs: %d (%d images without labels, %d labels without images)\n",
		res.Collected, res.Orphans, res.OrphanLabels)
	fmt.Fprintf(out, "Duplicates removed: %d\n", res.Duplicates)
	if res.HashFailures > 0 {
		fmt.Fprintf(out, "Unreadable images skipped: %d\n", res.HashFailures)
	}
	for _, root := range res.SkippedRoots {
		fmt.Fprintf(out, "Skipped source without images/ and labels/: %s\n", root)
	}
	fmt.Fprintf(out, "Seed: %d\n", res.Seed)
	fmt.Fprintf(out, "Dataset created at: %s\n", res.OutputDir)
}
