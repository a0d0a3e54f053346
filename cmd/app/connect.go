package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	client_watchlist "github.com/humanbelnik/cinematheque/internal/client/watchlist"
	"github.com/humanbelnik/cinematheque/internal/model"
	"github.com/spf13/cobra"
)

const defaultAddr = "http://localhost:8080"

// syncWriter serialises menu output with notices arriving from the
// websocket goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

type console struct {
	client     *client_watchlist.Client
	scanner    *bufio.Scanner
	out        *syncWriter
	movies     []model.Movie
	suggestion []string
}

func connectCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Interactive console for a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &console{
				client:  client_watchlist.New(addr),
				scanner: bufio.NewScanner(cmd.InOrStdin()),
				out:     &syncWriter{w: cmd.OutOrStdout()},
			}
			return c.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "server base URL")
	return cmd
}

func (c *console) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.client.Subscribe(ctx, c.onEvent); err != nil {
			c.out.Printf("live updates unavailable: %v\n", err)
		}
	}()
	defer func() {
		cancel()
		<-done
	}()

	for {
		c.out.Printf("\n=== Cinematheque ===\n" +
			"1. Show watchlist\n" +
			"2. Add movie\n" +
			"3. Remove movie\n" +
			"4. Refresh poster\n" +
			"5. Find similar movies\n" +
			"6. Add a suggested movie\n" +
			"0. Exit\n" +
			"Choose: ")

		if !c.scanner.Scan() {
			return c.scanner.Err()
		}

		var err error
		switch strings.TrimSpace(c.scanner.Text()) {
		case "1":
			err = c.showWatchlist(ctx)
		case "2":
			err = c.addMovie(ctx)
		case "3":
			err = c.removeMovie(ctx)
		case "4":
			err = c.refreshPoster(ctx)
		case "5":
			err = c.findSimilar(ctx)
		case "6":
			err = c.addSuggested(ctx)
		case "0":
			c.out.Printf("Bye!\n")
			return nil
		default:
			c.out.Printf("Unknown choice\n")
		}
		if err != nil {
			c.out.Printf("Error: %v\n", err)
		}
	}
}

func (c *console) onEvent(ev client_watchlist.Event) {
	if ev.Notice != nil {
		c.out.Printf("\n! %s: %s\n", ev.Notice.Title, ev.Notice.Message)
	}
}

func (c *console) prompt(label string) (string, error) {
	c.out.Printf("%s: ", label)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

// pick reads a 1-based position into a list of n items.
func (c *console) pick(label string, n int) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("nothing to choose from")
	}
	raw, err := c.prompt(fmt.Sprintf("%s (1-%d)", label, n))
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return i - 1, nil
}

func (c *console) showWatchlist(ctx context.Context) error {
	movies, err := c.client.List(ctx)
	if err != nil {
		return err
	}
	c.movies = movies

	c.out.Printf("\nMovies: %d\n", len(movies))
	for i, m := range movies {
		c.out.Printf("\n%d. %s (%s)\n", i+1, m.Title, m.Year)
		c.out.Printf("   Rating: %s\n", m.Rating)
		c.out.Printf("   Genre: %s\n", m.Genre)
		c.out.Printf("   Description: %s\n", m.Description)
		c.out.Printf("   Poster: %s\n", m.PosterURL)
	}
	return nil
}

func (c *console) addMovie(ctx context.Context) error {
	title, err := c.prompt("Title")
	if err != nil {
		return err
	}
	movie, err := c.client.Add(ctx, title)
	if err != nil {
		return err
	}
	c.out.Printf("Added %s (%s)\n", movie.Title, movie.Year)
	return nil
}

func (c *console) choose(ctx context.Context) (model.Movie, error) {
	if err := c.showWatchlist(ctx); err != nil {
		return model.Movie{}, err
	}
	i, err := c.pick("Movie number", len(c.movies))
	if err != nil {
		return model.Movie{}, err
	}
	return c.movies[i], nil
}

func (c *console) removeMovie(ctx context.Context) error {
	movie, err := c.choose(ctx)
	if err != nil {
		return err
	}
	if err := c.client.Delete(ctx, movie.ID); err != nil {
		return err
	}
	c.out.Printf("Removed %s\n", movie.Title)
	return nil
}

func (c *console) refreshPoster(ctx context.Context) error {
	movie, err := c.choose(ctx)
	if err != nil {
		return err
	}
	updated, err := c.client.RefreshPoster(ctx, movie.ID)
	if err != nil {
		return err
	}
	if updated == nil {
		c.out.Printf("Poster unchanged\n")
		return nil
	}
	c.out.Printf("New poster: %s\n", updated.PosterURL)
	return nil
}

func (c *console) findSimilar(ctx context.Context) error {
	title, err := c.prompt("Title")
	if err != nil {
		return err
	}
	suggestion, err := c.client.FindSimilar(ctx, title)
	if err != nil {
		return err
	}
	c.suggestion = suggestion.Titles

	c.out.Printf("\nSimilar to %s:\n", suggestion.Title)
	for i, t := range suggestion.Titles {
		c.out.Printf("%d. %s\n", i+1, t)
	}
	return nil
}

func (c *console) addSuggested(ctx context.Context) error {
	i, err := c.pick("Suggestion number", len(c.suggestion))
	if err != nil {
		return err
	}
	movie, err := c.client.Add(ctx, c.suggestion[i])
	if err != nil {
		return err
	}
	c.out.Printf("Added %s (%s)\n", movie.Title, movie.Year)
	return nil
}
