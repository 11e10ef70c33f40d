package main

import (
	"github.com/spf13/cobra"

	"github.com/amonks/todomvc/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the web server.

Settings are read from ~/.config/todomvc/config.toml and ./todomvc.toml;
flags override both.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr           string
	serveActionDelay    string
	serveDebugReconcile bool
	serveNoSeed         bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default "+server.DefaultAddr+")")
	serveCmd.Flags().StringVar(&serveActionDelay, "action-delay", "", "Delay before each submitted action runs, e.g. 500ms")
	serveCmd.Flags().BoolVar(&serveDebugReconcile, "debug-reconcile", false, "Log how the todo list moved between renders")
	serveCmd.Flags().BoolVar(&serveNoSeed, "no-seed", false, "Start an empty store instead of the demo accounts")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := server.OptionsFromConfig(cfg)
	if storePath != "" {
		opts.StorePath = storePath
	}

	addr := cfg.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}
	if cmd.Flags().Changed("action-delay") {
		delay, err := parseDelay(serveActionDelay)
		if err != nil {
			return err
		}
		opts.ActionDelay = delay
	}
	if cmd.Flags().Changed("debug-reconcile") {
		opts.DebugReconcile = serveDebugReconcile
	}
	opts.NoSeed = serveNoSeed

	srv, err := server.New(opts)
	if err != nil {
		return err
	}
	return srv.Serve(addr)
}
