package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/droidlog/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "droidlog: %v\n", err)
		return 1
	}
	return 0
}

// flags holds the options shared by the root and tail commands.
type flags struct {
	configPath  string
	prefsPath   string
	replay      string
	adbAddr     string
	serial      string
	pkg         string
	rulesPath   string
	logLevel    string
	metricsAddr string
}

func (f *flags) register(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&f.configPath, "config", "", "config file path (default ~/.config/droidlog/config.toml)")
	fs.StringVar(&f.prefsPath, "prefs", "", "UI preferences path (default ~/.config/droidlog/prefs.toml)")
	fs.StringVar(&f.replay, "replay", "", "show a saved logcat capture instead of a device")
	fs.StringVar(&f.adbAddr, "adb", "", "adb server address (default 127.0.0.1:5037)")
	fs.StringVarP(&f.serial, "serial", "s", "", "device serial (default: any single device)")
	fs.StringVarP(&f.pkg, "package", "p", "", "application package to follow; empty shows every process")
	fs.StringVar(&f.rulesPath, "rules", "", "highlight rules file")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func (f *flags) options(cmd *cobra.Command) app.Options {
	opts := app.Options{
		ConfigPath: f.configPath,
		PrefsPath:  f.prefsPath,
		Replay:     f.replay,
		Overrides: app.Overrides{
			ADBAddr:     f.adbAddr,
			Serial:      f.serial,
			RulesPath:   f.rulesPath,
			LogLevel:    f.logLevel,
			MetricsAddr: f.metricsAddr,
		},
	}
	if cmd.Flags().Changed("package") {
		pkg := f.pkg
		opts.Overrides.Package = &pkg
	}
	return opts
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "droidlog [package]",
		Short: "Follow an Android app's logcat output",
		Long: `droidlog streams logcat from a device through the adb server, follows the
processes of one application package and highlights the interesting parts
of every message.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("package", args[0]); err != nil {
					return err
				}
			}
			return app.Run(cmd.Context(), f.options(cmd))
		},
	}
	f.register(root)
	root.AddCommand(newTailCmd(f), newDevicesCmd(f), newVersionCmd(f))
	return root
}
