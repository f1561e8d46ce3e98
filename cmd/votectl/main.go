package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ballot/internal/identity"
	"ballot/internal/localstate"
	"ballot/internal/platform/logger"
	"ballot/internal/voterclient"
)

const programName = "votectl"

type globalFlags struct {
	server   string
	apiKey   string
	stateDir string
	memory   bool
	lookupIP bool
	debug    bool
}

// app holds what PersistentPreRunE opens for the subcommands.
type app struct {
	flags  globalFlags
	logger *slog.Logger
	state  *localstate.State
	client *voterclient.Client
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	level := "warn"
	if a.flags.debug {
		level = "debug"
	}
	a.logger = logger.NewWithWriter(cmd.ErrOrStderr(), level, "text")

	opts := []localstate.Option{localstate.WithLogger(a.logger)}
	if !a.flags.memory {
		opts = append(opts, localstate.WithDir(a.flags.stateDir))
	}
	state, err := localstate.Open(opts...)
	if err != nil {
		return err
	}
	a.state = state

	clientOpts := []voterclient.Option{
		voterclient.WithAPIKey(a.flags.apiKey),
		voterclient.WithLogger(a.logger),
	}
	if a.flags.lookupIP {
		clientOpts = append(clientOpts, voterclient.WithIPLookup(identity.NewIPify()))
	}
	a.client = voterclient.New(a.flags.server, state, clientOpts...)
	return nil
}

// run wraps a subcommand so the local state is closed even when it fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer func() {
			if err := a.state.Close(); err != nil {
				a.logger.Warn("close local state", "error", err)
			}
		}()
		return fn(cmd, args)
	}
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ballot"
	}
	return filepath.Join(dir, "ballot")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               programName,
		Short:             "Vote and follow live tallies from the command line",
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.server, "server", envOr("BALLOT_URL", "http://localhost:8080"), "ballot server base URL")
	flags.StringVar(&a.flags.apiKey, "api-key", os.Getenv("ANON_API_KEY"), "anonymous API key")
	flags.StringVar(&a.flags.stateDir, "state-dir", defaultStateDir(), "directory for local device state")
	flags.BoolVar(&a.flags.memory, "memory", false, "keep device state in memory only")
	flags.BoolVar(&a.flags.lookupIP, "lookup-ip", false, "report the public IP with each vote")
	flags.BoolVarP(&a.flags.debug, "debug", "D", false, "enable debug logging")

	root.AddCommand(
		categoriesCommand(a),
		candidatesCommand(a),
		statsCommand(a),
		voteCommand(a),
		validateCommand(a),
		statusCommand(a),
		selectionCommand(a),
		registerCommand(a),
		watchCommand(a),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
