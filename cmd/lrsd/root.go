package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"lrsd/internal/config"
	"lrsd/internal/dispatch"
)

// options collects persistent and per-command flags. Flags win over the
// environment, which wins over the file.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	addr       string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "lrsd",
		Short:         "Learning-record statement dispatcher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Config file (.yaml, .json or .toml); defaults to LRSD_CONFIG")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults LRSD_LOG_LEVEL or the file)")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "Log format: console|json (defaults LRSD_LOG_FORMAT or the file)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP intake and dispatch statements to providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, o)
		},
	}
	serve.Flags().StringVar(&o.addr, "addr", "", "HTTP listen address, e.g. :8080 (defaults LRSD_ADDR or the file)")

	check := &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := resolveConfig(o)
			if err != nil {
				return err
			}
			printSummary(cmd, f)
			return nil
		},
	}

	ver := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lrsd %s\n", version)
		},
	}

	root.AddCommand(serve, check, ver)
	return root
}

// resolveConfig loads the file (if any), applies environment and flag
// overrides and validates the result.
func resolveConfig(o *options) (config.File, config.Env, error) {
	env, err := config.ParseEnv()
	if err != nil {
		return config.File{}, env, err
	}
	path := o.configPath
	if path == "" {
		path = env.ConfigPath
	}
	f := config.Default()
	if path != "" {
		if f, err = config.Load(path); err != nil {
			return config.File{}, env, err
		}
	}
	env.ConfigPath = path
	env.Apply(&f)
	if o.addr != "" {
		f.HTTP.Addr = o.addr
	}
	if o.logLevel != "" {
		f.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		f.Log.Format = o.logFormat
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		return config.File{}, env, fmt.Errorf("invalid config: %w", err)
	}
	return f, env, nil
}

func printSummary(cmd *cobra.Command, f config.File) {
	out := cmd.OutOrStdout()
	overflow, _ := dispatch.ParseOverflowPolicy(f.Service.Overflow)
	fmt.Fprintf(out, "config ok\n")
	fmt.Fprintf(out, "  enabled:   %t\n", f.Service.Enabled)
	fmt.Fprintf(out, "  origins:   %s\n", orNone(f.Service.Origins.Filter))
	fmt.Fprintf(out, "  overflow:  %s\n", overflow)
	fmt.Fprintf(out, "  http:      %s\n", f.HTTP.Addr)
	fmt.Fprintf(out, "  providers: %d\n", len(f.Providers))
	for _, p := range f.Providers {
		fmt.Fprintf(out, "    - %s (%s)\n", p.ID, p.Type)
	}
}

func orNone(l []string) string {
	if len(l) == 0 {
		return "(none)"
	}
	return strings.Join(l, ", ")
}
