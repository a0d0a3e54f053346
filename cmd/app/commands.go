package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/humanbelnik/cinematheque/internal/app"
	"github.com/humanbelnik/cinematheque/internal/config"
	"github.com/humanbelnik/cinematheque/internal/logger"
	"github.com/humanbelnik/cinematheque/internal/model"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	config    string
	ephemeral bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:           "cinematheque",
		Short:         "Personal movie watchlist with generated posters and details",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "env file to load (default ./.env)")
	rootCmd.PersistentFlags().BoolVar(&flags.ephemeral, "ephemeral", false, "keep the watchlist in memory only")

	rootCmd.AddCommand(
		serveCmd(&flags),
		listCmd(&flags),
		addCmd(&flags),
		rmCmd(&flags),
		refreshCmd(&flags),
		similarCmd(&flags),
		connectCmd(),
	)
	return rootCmd
}

// noticePrinter reports failures on stderr for one-shot commands.
type noticePrinter struct {
	w io.Writer
}

func (p noticePrinter) OnStateChange(model.Snapshot) {}

func (p noticePrinter) OnNotice(n model.Notice) {
	fmt.Fprintf(p.w, "%s: %s\n", n.Title, n.Message)
}

func bootstrap(cmd *cobra.Command, flags *rootFlags, quiet bool) (*app.App, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}
	if flags.ephemeral {
		cfg.Storage.Backend = "memory"
	}

	level := cfg.Log.Level
	if quiet {
		level = "error"
	}
	log := logger.New(logger.Config{Level: level, Pretty: cfg.Log.Pretty, Output: cmd.ErrOrStderr()})

	return app.New(cmd.Context(), cfg, log, app.WithObserver(noticePrinter{w: cmd.ErrOrStderr()}))
}

func serveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and websocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			a, err := bootstrap(cmd, flags, false)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(ctx)
		},
	}
}

func listCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movies, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			movies := a.Usecase.Snapshot().Movies
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(movies)
			}
			return printMovies(cmd.OutOrStdout(), movies)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored records as JSON")
	return cmd
}

func addCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Look a movie up and add it to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			movie, err := a.Usecase.AddTitle(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printMovies(cmd.OutOrStdout(), []model.Movie{movie})
		},
	}
}

func rmCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid movie id %q: %w", args[0], err)
			}

			a, err := bootstrap(cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Usecase.Delete(cmd.Context(), id)
		},
	}
}

func refreshCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <id>",
		Short: "Look the poster of a movie up again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid movie id %q: %w", args[0], err)
			}

			a, err := bootstrap(cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			updated, err := a.Usecase.RefreshPoster(cmd.Context(), id, "")
			if err != nil {
				return err
			}
			if !updated {
				fmt.Fprintln(cmd.OutOrStdout(), "poster unchanged")
				return nil
			}
			for _, m := range a.Usecase.Snapshot().Movies {
				if m.ID == id {
					fmt.Fprintln(cmd.OutOrStdout(), m.PosterURL)
				}
			}
			return nil
		},
	}
}

func similarCmd(flags *rootFlags) *cobra.Command {
	var addAll bool
	cmd := &cobra.Command{
		Use:   "similar <title...>",
		Short: "Suggest movies similar to a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			suggestion, err := a.Usecase.FindSimilar(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			for i, title := range suggestion.Titles {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, title)
			}
			if !addAll {
				return nil
			}
			return addTitles(cmd.Context(), a, suggestion.Titles, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&addAll, "add", false, "add every suggested movie to the watchlist")
	return cmd
}

func addTitles(ctx context.Context, a *app.App, titles []string, w io.Writer) error {
	added := make([]model.Movie, 0, len(titles))
	var errs []error
	for _, title := range titles {
		movie, err := a.Usecase.AddTitle(ctx, title)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", title, err))
			continue
		}
		added = append(added, movie)
	}
	fmt.Fprintln(w)
	if err := printMovies(w, added); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func printMovies(w io.Writer, movies []model.Movie) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tGENRE\tRATING")
	for _, m := range movies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Title, m.Year, m.Genre, m.Rating)
	}
	return tw.Flush()
}
