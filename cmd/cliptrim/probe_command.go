package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cliptrim/internal/deps"
	"cliptrim/internal/hwaccel"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check external tools and detect the hardware encoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tool", "Command", "Status", "Detail"}, rows))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			}

			prober := hwaccel.NewProber(cfg.FFmpegBinary(), cfg.Encoding.HardwareAcceleration, ctx.buildLogger())
			capability := prober.Probe(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Encoder: %s (%s)\n", capability.Label(), capability.Encoder())
			return nil
		},
	}
}
