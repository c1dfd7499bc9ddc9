package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/dataset-curator/internal/audit"
	"github.com/ironsheep/dataset-curator/internal/config"
	"github.com/ironsheep/dataset-curator/internal/dataset"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var datasetFlag, outputFlag string
	var minSize float64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report images without labels and objects below a minimum area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out, err := resolveDatasetPaths(datasetFlag, outputFlag)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, nil)
			if err != nil {
				return err
			}
			taxonomy, err := dataset.LoadTaxonomy(root)
			if err != nil {
				return err
			}
			if len(taxonomy) == 0 {
				logger.Info("no data.yaml found, reporting numeric class ids", "dataset", root)
			}

			v := &audit.Validator{
				MinArea:     minSize,
				Taxonomy:    taxonomy,
				Logger:      logger,
				NewProgress: ctx.progress(cmd),
			}
			report, err := v.Validate(cmd.Context(), root)
			if err != nil {
				return err
			}
			_, copyErr := audit.CopyFlagged(report, root, out, logger)

			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printValidateSummary(cmd.OutOrStdout(), report, out)
			}
			if copyErr != nil {
				return fmt.Errorf("copy flagged images: %w", copyErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Dataset root to validate")
	cmd.Flags().StringVar(&outputFlag, "output", "", "Directory to copy flagged images into")
	cmd.Flags().Float64Var(&minSize, "min-size", audit.DefaultMinArea, "Minimum object area as a fraction of the image area")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full report as JSON")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func printValidateSummary(out io.Writer, report *audit.Report, outputDir string) {
	fmt.Fprintf(out, "Images scanned: %d\n", report.ImagesScanned)
	fmt.Fprintf(out, "Images with missing annotations: %d\n", len(report.MissingAnnotations))
	fmt.Fprintf(out, "Images with small objects: %d\n", len(report.SmallObjects))
	if len(report.Malformed) > 0 {
		fmt.Fprintf(out, "Annotation problems: %d\n", len(report.Malformed))
	}
	fmt.Fprintf(out, "Flagged images copied to: %s\n", outputDir)
}

func newFilterCommand(ctx *commandContext) *cobra.Command {
	var datasetFlag, outputFlag string
	var threshold float64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Copy pairs containing small objects into a new dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out, err := resolveDatasetPaths(datasetFlag, outputFlag)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, nil)
			if err != nil {
				return err
			}

			f := &audit.Filter{
				Threshold:   threshold,
				Logger:      logger,
				NewProgress: ctx.progress(cmd),
			}
			res, err := f.Run(cmd.Context(), root, out)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, res)
			}
			printFilterSummary(cmd.OutOrStdout(), res, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Dataset root to filter")
	cmd.Flags().StringVar(&outputFlag, "output", "", "Directory to write the filtered dataset into")
	cmd.Flags().Float64Var(&threshold, "threshold", audit.DefaultSmallThreshold, "Relative width and height below which an object is small")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func printFilterSummary(out io.Writer, res *audit.FilterResult, outputDir string) {
	if len(res.PerSplit) > 0 {
		names := make([]string, 0, len(res.PerSplit))
		for name := range res.PerSplit {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			label := name
			if label == "" {
				label = "(flat)"
			}
			rows = append(rows, []string{label, strconv.Itoa(res.PerSplit[name])})
		}
		fmt.Fprintln(out, renderTable([]string{"Split", "Kept"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
	fmt.Fprintf(out, "Images scanned: %d\n", res.Scanned)
	fmt.Fprintf(out, "Images with small objects: %d\n", len(res.Kept))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, "Pairs skipped: %d\n", len(res.Skipped))
	}
	fmt.Fprintf(out, "Filtered dataset written to: %s\n", outputDir)
}

func resolveDatasetPaths(datasetFlag, outputFlag string) (string, string, error) {
	if strings.TrimSpace(datasetFlag) == "" || strings.TrimSpace(outputFlag) == "" {
		return "", "", errors.New("--dataset and --output are required")
	}
	root, err := config.ExpandPath(strings.TrimSpace(datasetFlag))
	if err != nil {
		return "", "", fmt.Errorf("resolve dataset path: %w", err)
	}
	out, err := config.ExpandPath(strings.TrimSpace(outputFlag))
	if err != nil {
		return "", "", fmt.Errorf("resolve output path: %w", err)
	}
	if root == out {
		return "", "", errors.New("--output must differ from --dataset")
	}
	return root, out, nil
}
