package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/ranking"
	"github.com/okian/golazo/internal/domain/types"
	"github.com/okian/golazo/internal/simulate"
)

func newPlayersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List or add players",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List players in alphabetical order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.store()
			defer store.Close()

			players, err := store.FetchPlayers(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), types.FromPlayers(players))
			}
			return printPlayers(cmd.OutOrStdout(), players)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME...",
		Short: "Add one player per argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.store()
			defer store.Close()

			created := make([]model.Player, 0, len(args))
			for _, name := range args {
				p, err := store.CreatePlayer(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("add %q: %w", name, err)
				}
				created = append(created, p)
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), types.FromPlayers(created))
			}
			return printPlayers(cmd.OutOrStdout(), created)
		},
	})
	return cmd
}

type matchFlags struct {
	home      []string
	away      []string
	homeGoals int
	awayGoals int
}

func (f *matchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.home, "home", nil, "Home player IDs (comma separated)")
	cmd.Flags().StringSliceVar(&f.away, "away", nil, "Away player IDs (comma separated)")
	cmd.Flags().IntVar(&f.homeGoals, "home-goals", 0, "Goals scored by the home side")
	cmd.Flags().IntVar(&f.awayGoals, "away-goals", 0, "Goals scored by the away side")
}

func (f *matchFlags) params() model.MatchParameters {
	return model.MatchParameters{
		HomePlayerIDs: f.home,
		AwayPlayerIDs: f.away,
		HomeGoals:     f.homeGoals,
		AwayGoals:     f.awayGoals,
	}
}

func newMatchesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List, add, update or delete matches",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List matches in the order they were recorded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.store()
			defer store.Close()

			matches, err := store.FetchMatches(cmd.Context())
			if err != nil {
				return err
			}
			return printMatches(cmd.OutOrStdout(), matches, opts.jsonOut)
		},
	})

	var addFlags matchFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a match result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.store()
			defer store.Close()

			m, err := store.CreateMatch(cmd.Context(), addFlags.params())
			if err != nil {
				return err
			}
			return printMatches(cmd.OutOrStdout(), []model.Match{m}, opts.jsonOut)
		},
	}
	addFlags.register(addCmd)

	var updateFlags matchFlags
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a match's sides and score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.store()
			defer store.Close()

			m, err := store.UpdateMatch(cmd.Context(), args[0], updateFlags.params())
			if err != nil {
				return err
			}
			return printMatches(cmd.OutOrStdout(), []model.Match{m}, opts.jsonOut)
		},
	}
	updateFlags.register(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.store()
			defer store.Close()

			if err := store.DeleteMatch(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, updateCmd, deleteCmd)
	return cmd
}

func newRankingsCmd(opts *rootOptions) *cobra.Command {
	var changes bool
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show the current rankings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.store()
			defer store.Close()

			if changes {
				cs, err := store.FetchRankingChanges(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cs)
			}

			rankings, err := store.FetchRankings(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), types.FromRankings(rankings))
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tPLAYER\tRATING")
			for i, r := range rankings {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.Player.Name, model.FormatRating(r.Rating))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&changes, "changes", false, "Show the changeset of the last refresh instead")
	return cmd
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var (
		cfg              simulate.Config
		win, draw, loss  int
		scale            float64
		zeroPlayedPolicy string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Seed the server with generated results and verify its rankings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := ranking.ParseZeroPlayedPolicy(zeroPlayedPolicy)
			if err != nil {
				return err
			}
			cfg.Engine = ranking.NewEngine(
				ranking.WithPoints(win, draw, loss),
				ranking.WithScale(scale),
				ranking.WithZeroPlayedPolicy(policy),
			)

			store := opts.store()
			defer store.Close()

			stats, err := simulate.Run(cmd.Context(), store, &cfg)
			if stats != nil && opts.jsonOut {
				if perr := printJSON(cmd.OutOrStdout(), stats); perr != nil {
					return perr
				}
			} else if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "players %d (failed %d), matches %d (failed %d), verified %t in %s\n",
					stats.PlayersCreated, stats.PlayersFailed, stats.MatchesCreated, stats.MatchesFailed,
					stats.Verified, stats.Duration)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Players, "players", simulate.DefaultPlayers, "Number of players to create")
	flags.IntVar(&cfg.Matches, "matches", simulate.DefaultMatches, "Number of matches to record")
	flags.IntVar(&cfg.Workers, "workers", simulate.DefaultWorkers, "Number of concurrent submitters")
	flags.IntVar(&cfg.TeamSize, "team-size", simulate.DefaultTeamSize, "Maximum players per side")
	flags.IntVar(&cfg.MaxGoals, "max-goals", simulate.DefaultMaxGoals, "Maximum goals per side")
	flags.DurationVar(&cfg.SettleTimeout, "settle-timeout", simulate.DefaultSettleTimeout, "How long to wait for rankings to converge")
	flags.StringVar(&cfg.OutputFile, "output", "", "Write a JSON report to this file")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "Log every failed submission")
	flags.IntVar(&win, "points-win", ranking.DefaultWinPoints, "Points for a win, as configured on the server")
	flags.IntVar(&draw, "points-draw", ranking.DefaultDrawPoints, "Points for a draw, as configured on the server")
	flags.IntVar(&loss, "points-loss", ranking.DefaultLossPoints, "Points for a loss, as configured on the server")
	flags.Float64Var(&scale, "rating-scale", ranking.DefaultScale, "Rating scale, as configured on the server")
	flags.StringVar(&zeroPlayedPolicy, "zero-played-policy", string(ranking.ZeroPlayedZero), "Zero-played policy, as configured on the server")
	return cmd
}

func printPlayers(out io.Writer, players []model.Player) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, p := range players {
		fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
	}
	return w.Flush()
}

func printMatches(out io.Writer, matches []model.Match, asJSON bool) error {
	if asJSON {
		return printJSON(out, types.FromMatches(matches))
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHOME\tSCORE\tAWAY")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%d-%d\t%s\n", m.ID, names(m.HomePlayers), m.HomeGoals, m.AwayGoals, names(m.AwayPlayers))
	}
	return w.Flush()
}

func names(players []model.Player) string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return strings.Join(out, ", ")
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
