package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/droidlog/internal/app"
)

func newTailCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "tail [package]",
		Short: "Print log records to stdout without the terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("package", args[0]); err != nil {
					return err
				}
			}
			return app.Tail(cmd.Context(), f.options(cmd), cmd.OutOrStdout())
		},
	}
}
