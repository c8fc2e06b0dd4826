package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cliptrim/internal/daemon"
	"cliptrim/internal/logging"
	"cliptrim/internal/orchestrator"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Process queued jobs in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.buildLogger()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			orch := ctx.newOrchestrator(store)

			d, err := daemon.New(cfg, store, orch, logger)
			if err != nil {
				_ = store.Close()
				return err
			}
			defer d.Close()

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := d.Start(sigCtx); err != nil {
				return err
			}

			go logEvents(logger, d.Events(), sigCtx.Done())
			<-sigCtx.Done()
			d.Stop()
			return nil
		},
	}
}

// logEvents mirrors orchestrator events into the daemon log.
func logEvents(logger *slog.Logger, events <-chan orchestrator.Event, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event := <-events:
			switch event.Type {
			case orchestrator.EventProgress:
				// Progress already lands in the job record; logging each
				// sample would flood the file.
			case orchestrator.EventFailed:
				logger.Error("job failed",
					logging.Int64(logging.FieldJobID, event.JobID),
					logging.String("message", event.Message))
			case orchestrator.EventWarning:
				logger.Warn("job warning",
					logging.Int64(logging.FieldJobID, event.JobID),
					logging.String("message", event.Message))
			default:
				logger.Info("job event",
					logging.Int64(logging.FieldJobID, event.JobID),
					logging.String(logging.FieldEventType, string(event.Type)),
					logging.String(logging.FieldStage, event.Stage))
			}
		}
	}
}
