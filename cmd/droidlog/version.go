package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/droidlog/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the droidlog version and the adb server protocol version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "droidlog %s\n", version); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			v, err := app.ServerVersion(ctx, f.options(cmd))
			if err != nil {
				_, err = fmt.Fprintf(out, "adb server unavailable: %v\n", err)
				return err
			}
			_, err = fmt.Fprintf(out, "adb server protocol %d\n", v)
			return err
		},
	}
}
