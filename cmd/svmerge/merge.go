package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/svmerge/internal/merge"
	"github.com/inodb/svmerge/internal/output"
	"github.com/inodb/svmerge/internal/vcf"
)

func newMergeCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "merge <input.vcf>",
		Short: "Merge near-duplicate SV calls into consensus records",
		Long: `Merge clusters near-duplicate structural variant calls and writes one
consensus record per cluster. Input must be a VCF sorted by chromosome and
position; plain, gzipped, and stdin ('-') input are supported.`,
		Example: `  svmerge merge calls.vcf
  svmerge merge -o merged.vcf calls.vcf.gz
  svmerge merge --output-ids --ignore-bnd calls.vcf
  cat calls.vcf | svmerge merge -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return runMerge(args[0], outputFile, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Int64("max-distance", 50, "maximum begin/end distance between mergeable calls")
	cmd.Flags().Int64("max-size-difference", 100, "maximum size difference between mergeable calls")
	cmd.Flags().Bool("join-mode", false, "label output NUM_JOINED_SVS and keep prior merge counts")
	cmd.Flags().Bool("output-ids", false, "annotate merged records with MERGED_IDS")
	cmd.Flags().Bool("ignore-bnd", false, "drop breakend (BND/TRA) calls")
	cmd.Flags().Bool("ignore-inv", false, "drop inversion (INV) calls")
	cmd.Flags().Bool("no-fold-inv", false, "keep inversions as INV instead of merging them as insertions")

	// Config file keys under merge.* override the flag defaults.
	viper.BindPFlag("merge.max_distance", cmd.Flags().Lookup("max-distance"))
	viper.BindPFlag("merge.max_size_difference", cmd.Flags().Lookup("max-size-difference"))
	viper.BindPFlag("merge.join_mode", cmd.Flags().Lookup("join-mode"))
	viper.BindPFlag("merge.output_ids", cmd.Flags().Lookup("output-ids"))
	viper.BindPFlag("merge.ignore_bnd", cmd.Flags().Lookup("ignore-bnd"))
	viper.BindPFlag("merge.ignore_inv", cmd.Flags().Lookup("ignore-inv"))
	viper.BindPFlag("merge.no_fold_inv", cmd.Flags().Lookup("no-fold-inv"))

	return cmd
}

func runMerge(inputPath, outputPath string, verbose bool) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		return err
	}
	defer parser.Close()

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	cfg := merge.DefaultConfig()
	cfg.MaxDistance = viper.GetInt64("merge.max_distance")
	cfg.MaxSizeDifference = viper.GetInt64("merge.max_size_difference")
	cfg.Candidate.JoinMode = viper.GetBool("merge.join_mode")
	cfg.Candidate.OutputIDs = viper.GetBool("merge.output_ids")
	cfg.Candidate.IgnoreBreakends = viper.GetBool("merge.ignore_bnd")
	cfg.Candidate.IgnoreInversions = viper.GetBool("merge.ignore_inv")
	cfg.Candidate.FoldInversion = !viper.GetBool("merge.no_fold_inv")

	writer := output.NewMergedWriter(out, parser.Header(), cfg.Candidate.JoinMode, cfg.Candidate.OutputIDs)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	m := merge.New(cfg)
	m.SetLogger(logger)

	if _, err := m.Run(parser, writer); err != nil {
		return err
	}

	return writer.Flush()
}
