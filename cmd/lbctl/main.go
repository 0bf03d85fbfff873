package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"lexi-leaderboard/internal/client"
	"lexi-leaderboard/internal/constants"
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/logger"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

const usage = `usage: lbctl <command> [flags]

commands:
  submit   submit one score
  top      print the top scores of a level, or of every level with -level all
  replay   submit scores from a JSON-lines file, paced to the server's limit
`

func main() {
	log := logger.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, zerolog.InfoLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "submit":
		err = runSubmit(ctx, os.Args[2:], log)
	case "top":
		err = runTop(ctx, os.Args[2:], os.Stdout)
	case "replay":
		err = runReplay(ctx, os.Args[2:], log)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		os.Exit(1)
	}
}

type commonFlags struct {
	server  *string
	origin  *string
	timeout *time.Duration
	game    *string
	mode    *string
}

func addCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		server:  fs.String("server", getenv("LBCTL_SERVER", "http://localhost:8080"), "leaderboard base URL"),
		origin:  fs.String("origin", os.Getenv("LBCTL_ORIGIN"), "Origin header to send"),
		timeout: fs.Duration("timeout", 10*time.Second, "per-request timeout"),
		game:    fs.String("game", domain.DefaultGame, "game"),
		mode:    fs.String("mode", "en_en", "mode"),
	}
}

func (f commonFlags) client() *client.Client {
	return client.New(client.Options{BaseURL: *f.server, Origin: *f.origin, Timeout: *f.timeout})
}

func runSubmit(ctx context.Context, args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	common := addCommon(fs)
	level := fs.String("level", "A1", "level")
	name := fs.String("name", "", "player name")
	score := fs.Int("score", 0, "score")
	fs.Parse(args)

	res, err := common.client().Submit(ctx, client.Submission{
		Game:  *common.game,
		Mode:  *common.mode,
		Level: *level,
		Name:  *name,
		Score: *score,
	})
	if err != nil {
		return err
	}

	event := log.Info().Str("name", res.Entry.Name).Int("score", res.Entry.Score)
	if res.Rank != nil {
		event = event.Int("rank", *res.Rank)
	}
	event.Msg("score submitted")
	return nil
}

func runTop(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("top", flag.ExitOnError)
	common := addCommon(fs)
	level := fs.String("level", "A1", "level, or \"all\"")
	limit := fs.Int("limit", constants.DefaultLimit, "number of entries")
	fs.Parse(args)

	c := common.client()
	if *level != "all" {
		top, err := c.Top(ctx, *common.game, *common.mode, *level, *limit)
		if err != nil {
			return err
		}
		printTop(out, *level, top)
		return nil
	}

	all, err := c.TopAllLevels(ctx, *common.game, *common.mode, *limit)
	if err != nil {
		return err
	}
	for _, l := range domain.AllowedLevels {
		printTop(out, l, all[l])
	}
	return nil
}

func printTop(out io.Writer, level string, top *client.TopResponse) {
	fmt.Fprintf(out, "== %s (%d)\n", level, len(top.Results))
	for _, e := range top.Results {
		fmt.Fprintf(out, "%4d  %-12s  %7d\n", e.Rank, e.Name, e.Score)
	}
}

func runReplay(ctx context.Context, args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	common := addCommon(fs)
	file := fs.String("file", "-", "JSON-lines input, - for stdin")
	fs.Parse(args)

	in := io.Reader(os.Stdin)
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open replay file: %w", err)
		}
		defer f.Close()
		in = f
	}

	limiter := client.ReplayLimiter(constants.RateLimitMax, constants.RateLimitWindow)
	summary, err := common.client().Replay(ctx, in, limiter, log)
	log.Info().
		Int("submitted", summary.Submitted).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("replay finished")
	return err
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
