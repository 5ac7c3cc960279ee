package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/golazo/internal/adapters/http/client"
	"github.com/okian/golazo/pkg/logger"
)

type rootOptions struct {
	host     string
	timeout  time.Duration
	logLevel string
	jsonOut  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "golazo-cli",
		Short: "A CLI to interact with the golazo server",
		Long: `A command-line interface for recording players and match results
on a golazo server and reading the rankings it derives.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(opts.logLevel)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.host, "host", "http://localhost:9080", "The host address of the server")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.BoolVar(&opts.jsonOut, "json", false, "Print responses as JSON")

	rootCmd.AddCommand(
		newPlayersCmd(opts),
		newMatchesCmd(opts),
		newRankingsCmd(opts),
		newSimulateCmd(opts),
	)
	return rootCmd
}

func (o *rootOptions) store() *client.RemoteStore {
	return client.New(o.host, client.WithTimeout(o.timeout))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "golazo-cli: %s\n", err)
		os.Exit(1)
	}
}
