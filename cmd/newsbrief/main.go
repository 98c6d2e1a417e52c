// Command newsbrief runs the daily or weekly brief over stored articles.
//
// It loads the articles published in the window, classifies and ranks them,
// saves the analysis back to the store and publishes a digest.
//
// Usage:
//
//	newsbrief -mode daily
//	newsbrief -mode weekly -from 2026-10-05 -to 2026-10-12 -publish s3
//	newsbrief -input articles.json -summarize -publish file -out ./digests
//
// Articles come from PostgreSQL when NEWSBRIEF_DATABASE_URL is set, otherwise
// from the -input JSON file. The digest goes to stdout unless -publish names
// a target.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/client"
	"github.com/spetersoncode/newsbrief/internal/config"
	"github.com/spetersoncode/newsbrief/pipeline"
	"github.com/spetersoncode/newsbrief/report"
	"github.com/spetersoncode/newsbrief/store"
)

const dateLayout = "2006-01-02"

// Publish targets.
const (
	publishStdout = ""
	publishFile   = "file"
	publishS3     = "s3"
)

type options struct {
	mode      pipeline.Mode
	from      time.Time
	to        time.Time
	publish   string
	input     string
	out       string
	summarize bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("newsbrief failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	opts, err := parseFlags(args, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg, opts.input)
	if err != nil {
		return err
	}
	defer closeStore()

	articles, err := st.Articles(ctx, opts.from, opts.to)
	if err != nil {
		return fmt.Errorf("load articles: %w", err)
	}
	log := logger.With("mode", opts.mode, "from", opts.from.Format(dateLayout), "to", opts.to.Format(dateLayout))
	log.Info("articles loaded", "count", len(articles))

	c, err := client.New(client.FromConfig(cfg, logger))
	if err != nil {
		return err
	}
	runOpts := pipeline.DefaultOptions(opts.mode)
	runOpts.Summarize = opts.summarize
	res, err := pipeline.New(c.Extractor(), logger).Run(ctx, articles, runOpts)
	if err != nil {
		return fmt.Errorf("run %s brief: %w", opts.mode, err)
	}
	for _, w := range res.Warnings {
		log.Warn("brief warning", "warning", w)
	}

	if err := st.SaveAnalysis(ctx, res.Articles); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	digest := report.Build(res)
	pub, err := publisher(cfg, opts, stdout, logger)
	if err != nil {
		return err
	}
	location, err := pub.Publish(ctx, digest)
	if err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}
	log.Info("digest published", "id", digest.ID, "location", location)
	return nil
}

// parseFlags reads the command line. The window defaults to the day or week
// ending at now.
func parseFlags(args []string, now time.Time) (options, error) {
	fs := flag.NewFlagSet("newsbrief", flag.ContinueOnError)
	mode := fs.String("mode", string(pipeline.ModeDaily), "brief mode: daily or weekly")
	from := fs.String("from", "", "window start date, inclusive (YYYY-MM-DD)")
	to := fs.String("to", "", "window end date, exclusive (YYYY-MM-DD)")
	publish := fs.String("publish", publishStdout, "digest target: file or s3 (default stdout)")
	input := fs.String("input", "", "JSON file of articles, used when no database is configured")
	out := fs.String("out", "digests", "directory for -publish file")
	summarize := fs.Bool("summarize", false, "summarize every selected article")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	o := options{publish: *publish, input: *input, out: *out, summarize: *summarize}
	var err error
	if o.mode, err = pipeline.ParseMode(*mode); err != nil {
		return options{}, err
	}
	switch o.publish {
	case publishStdout, publishFile, publishS3:
	default:
		return options{}, fmt.Errorf("unknown publish target %q", o.publish)
	}

	o.to = now
	if *to != "" {
		if o.to, err = time.ParseInLocation(dateLayout, *to, now.Location()); err != nil {
			return options{}, fmt.Errorf("invalid -to: %w", err)
		}
	}
	o.from = o.to.Add(-window(o.mode))
	if *from != "" {
		if o.from, err = time.ParseInLocation(dateLayout, *from, now.Location()); err != nil {
			return options{}, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if !o.from.Before(o.to) {
		return options{}, fmt.Errorf("empty window: %s is not before %s", o.from.Format(dateLayout), o.to.Format(dateLayout))
	}
	return o, nil
}

func window(mode pipeline.Mode) time.Duration {
	if mode == pipeline.ModeWeekly {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// openStore returns the PostgreSQL store when configured, else an in-memory
// store seeded from the input file.
func openStore(ctx context.Context, cfg *config.Config, input string) (store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	}
	if input == "" {
		return nil, nil, errors.New("no article source: set NEWSBRIEF_DATABASE_URL or pass -input")
	}
	articles, err := readArticles(input)
	if err != nil {
		return nil, nil, err
	}
	return store.NewMemory(articles...), func() {}, nil
}

func readArticles(path string) ([]nb.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	var articles []nb.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("decode articles %s: %w", path, err)
	}
	return articles, nil
}

func publisher(cfg *config.Config, o options, stdout io.Writer, logger *slog.Logger) (report.Publisher, error) {
	switch o.publish {
	case publishS3:
		if !cfg.S3Enabled() {
			return nil, errors.New("-publish s3 needs NEWSBRIEF_S3_ENDPOINT and NEWSBRIEF_S3_BUCKET")
		}
		return report.NewS3Publisher(report.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		}, logger)
	case publishFile:
		return report.FilePublisher{Dir: o.out}, nil
	}
	return writerPublisher{w: stdout}, nil
}

// writerPublisher prints the digest JSON.
type writerPublisher struct {
	w io.Writer
}

func (p writerPublisher) Publish(_ context.Context, d report.Digest) (string, error) {
	data, err := d.JSON()
	if err != nil {
		return "", err
	}
	if _, err := fmt.Fprintln(p.w, string(data)); err != nil {
		return "", err
	}
	return "stdout", nil
}
