package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cliptrim/internal/jobs"
	"cliptrim/internal/orchestrator"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var removeFlags []string
	var outputFlag string
	var subtitlesFlag bool
	var languageFlag string

	cmd := &cobra.Command{
		Use:   "run <source>",
		Short: "Trim a video in the foreground and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remove, err := parseRemoveSpecs(removeFlags)
			if err != nil {
				return err
			}
			if len(remove) == 0 {
				return errors.New("at least one --remove start-end range is required")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			orch := ctx.newOrchestrator(store)

			wantSubtitles := subtitlesFlag
			if !cmd.Flags().Changed("subtitles") {
				wantSubtitles = ctx.configValue().Subtitles.Enabled
			}

			job, err := orch.Submit(cmd.Context(), orchestrator.SubmitRequest{
				SourcePath:    args[0],
				OutputPath:    outputFlag,
				Remove:        remove,
				WantSubtitles: wantSubtitles,
				SubtitleLang:  languageFlag,
			})
			if err != nil {
				return err
			}

			sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			quit := make(chan struct{})
			rendered := make(chan struct{})
			go func() {
				defer close(rendered)
				renderRunEvents(cmd.OutOrStdout(), orch.Events(), quit, stdoutIsTerminal())
			}()

			runErr := orch.RunJob(sigCtx, job)
			close(quit)
			<-rendered
			if runErr != nil {
				return runErr
			}

			final, err := store.GetByID(context.Background(), job.ID)
			if err != nil {
				return err
			}
			return reportRunResult(cmd.OutOrStdout(), final)
		},
	}

	cmd.Flags().StringArrayVarP(&removeFlags, "remove", "r", nil, "Time range to remove, as start-end (seconds or timecodes); repeatable")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path (defaults to <source>_trimmed in the output directory)")
	cmd.Flags().BoolVar(&subtitlesFlag, "subtitles", false, "Generate an SRT subtitle track for the result (default from subtitles.enabled)")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Transcription language hint (for example \"en\")")

	return cmd
}

// renderRunEvents consumes orchestrator events until quit closes, then drains
// whatever is already buffered. Terminals get an in-place progress line;
// pipes get occasional plain lines.
func renderRunEvents(out io.Writer, events <-chan orchestrator.Event, quit <-chan struct{}, tty bool) {
	var lastPercent float64
	inProgress := false

	handle := func(event orchestrator.Event) {
		switch event.Type {
		case orchestrator.EventProgress:
			percent := event.Percent * 100
			if tty {
				fmt.Fprintf(out, "\r%s %5.1f%%  ETA %s   ", event.Stage, percent, formatClock(event.ETASeconds))
				inProgress = true
				return
			}
			if percent-lastPercent >= 5 || percent >= 100 {
				fmt.Fprintf(out, "%s %.1f%% (ETA %s)\n", event.Stage, percent, formatClock(event.ETASeconds))
				lastPercent = percent
			}
		case orchestrator.EventStage:
			if inProgress {
				fmt.Fprintln(out)
				inProgress = false
			}
			fmt.Fprintf(out, "%s...\n", event.Stage)
		case orchestrator.EventWarning:
			if inProgress {
				fmt.Fprintln(out)
				inProgress = false
			}
			fmt.Fprintf(out, "warning: %s\n", event.Message)
		default:
			if inProgress {
				fmt.Fprintln(out)
				inProgress = false
			}
		}
	}

	for {
		select {
		case event := <-events:
			handle(event)
		case <-quit:
			for {
				select {
				case event := <-events:
					handle(event)
				default:
					if inProgress {
						fmt.Fprintln(out)
					}
					return
				}
			}
		}
	}
}

func reportRunResult(out io.Writer, job *jobs.Job) error {
	if job == nil {
		return errors.New("job record disappeared")
	}
	switch job.Status {
	case jobs.StatusCompleted:
		fmt.Fprintf(out, "Completed: %s\n", job.OutputPath)
		if job.SubtitlePath != "" {
			fmt.Fprintf(out, "Subtitles: %s\n", job.SubtitlePath)
		}
		if job.SubtitleWarning != "" {
			fmt.Fprintf(out, "Subtitle warning: %s\n", job.SubtitleWarning)
		}
		return nil
	case jobs.StatusCancelled:
		return fmt.Errorf("job %d cancelled", job.ID)
	default:
		if job.StderrTail != "" {
			fmt.Fprintln(out, job.StderrTail)
		}
		return fmt.Errorf("job %d failed: %s", job.ID, job.ErrorMessage)
	}
}
