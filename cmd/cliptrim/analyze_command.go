package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cliptrim/internal/analysis"
	"cliptrim/internal/subtitles"
	"cliptrim/internal/textutil"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var thresholdFlag float64
	var languageFlag string

	cmd := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Transcribe a video and propose silence and filler-word cuts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()

			source, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if _, err := os.Stat(source); err != nil {
				return fmt.Errorf("inspect source: %w", err)
			}

			workDir := filepath.Join(cfg.Paths.StagingDir, fmt.Sprintf("analyze-%d", os.Getpid()))
			defer os.RemoveAll(workDir)

			service := subtitles.NewService(cfg, ctx.buildLogger())
			words, err := service.TranscribeWords(cmd.Context(), source, workDir, languageFlag)
			if err != nil {
				return err
			}

			analysisCfg := cfg.Analysis
			if cmd.Flags().Changed("threshold") {
				analysisCfg.SilenceThreshold = thresholdFlag
			}
			proposals := analysis.Analyze(words, analysisCfg)
			if len(proposals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cut candidates found")
				return nil
			}

			rows := make([][]string, 0, len(proposals))
			flags := make([]string, 0, len(proposals))
			for _, proposal := range proposals {
				rows = append(rows, []string{
					string(proposal.Kind),
					formatClock(proposal.Start),
					formatClock(proposal.End),
					fmt.Sprintf("%.2fs", proposal.Duration()),
					textutil.Truncate(proposal.Content, 40),
				})
				flags = append(flags, fmt.Sprintf("--remove %s-%s",
					formatSecondsFlag(proposal.Start), formatSecondsFlag(proposal.End)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Kind", "Start", "End", "Length", "Content"}, rows))
			fmt.Fprintf(cmd.OutOrStdout(), "\nSuggested:\n  cliptrim run %q %s\n",
				source, strings.Join(flags, " "))
			return nil
		},
	}

	cmd.Flags().Float64Var(&thresholdFlag, "threshold", 0.8, "Minimum silence gap in seconds to propose a cut")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Transcription language hint")
	return cmd
}
