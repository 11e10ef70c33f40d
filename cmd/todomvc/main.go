// Package main implements the todomvc CLI: it runs the web server and
// manages users and todos in the store file.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/amonks/todomvc/internal/config"
	"github.com/amonks/todomvc/internal/paths"
	"github.com/amonks/todomvc/server"
	"github.com/amonks/todomvc/todo"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "todomvc",
	Short:         "TodoMVC server with optimistic rendering",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var storePath string

func init() {
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the store file (default ~/.local/state/todomvc/"+todo.DefaultFilename+")")
}

// loadConfig reads todomvc.toml from the working directory and the global
// config file.
func loadConfig() (*config.Config, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	return config.Load(cwd)
}

// serverOptions merges the config file with the --store flag.
func serverOptions() (server.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return server.Options{}, err
	}
	opts := server.OptionsFromConfig(cfg)
	if storePath != "" {
		opts.StorePath = storePath
	}
	return opts, nil
}

// openStore opens the configured store for a single command.
func openStore() (*todo.Store, error) {
	opts, err := serverOptions()
	if err != nil {
		return nil, err
	}
	return server.OpenStore(opts)
}

// withStore runs fn against the store and flushes it afterwards.
func withStore(fn func(*todo.Store) error) (err error) {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()
	return fn(store)
}
