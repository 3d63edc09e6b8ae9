package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/droidlog/internal/app"
)

func newDevicesCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices known to the adb server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := app.Devices(cmd.Context(), f.options(cmd))
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no devices attached")
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range devices {
				fmt.Fprintf(tw, "%s\t%s\n", d.Serial, d.State)
			}
			return tw.Flush()
		},
	}
}
