// Package pipeline runs the daily or weekly analysis over a batch of
// articles: impact labels, sector tags, major articles per news type, the
// top articles of each type and, weekly, a market commentary per type.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/extract"
)

// Mode selects the report cadence.
type Mode string

const (
	ModeDaily  Mode = "daily"
	ModeWeekly Mode = "weekly"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDaily, ModeWeekly:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want daily or weekly)", s)
}

// Options configures a run.
type Options struct {
	Mode Mode

	// TopPerType is how many top articles are selected per news type. Groups
	// with fewer candidates select all of them.
	TopPerType int

	// MajorPerGroup is how many major articles are flagged per news type.
	MajorPerGroup int

	// CapPerImpact asks for at most this many top articles sharing an impact
	// label. Zero disables the instruction.
	CapPerImpact int

	// Summarize writes a summary for every top article.
	Summarize bool

	// Comment writes a market commentary per news type over its top
	// articles. Weekly runs only.
	Comment bool
}

// DefaultOptions returns the settings used for mode.
func DefaultOptions(mode Mode) Options {
	if mode == ModeWeekly {
		return Options{Mode: ModeWeekly, TopPerType: 5, MajorPerGroup: 1, CapPerImpact: 3, Comment: true}
	}
	return Options{Mode: ModeDaily, TopPerType: 3, MajorPerGroup: 1, CapPerImpact: 2}
}

// Band returns the summary length band of the mode.
func (o Options) Band() extract.WordBand {
	if o.Mode == ModeWeekly {
		return extract.WeeklyBand
	}
	return extract.DailyBand
}

// Extractor is the subset of *extract.Extractor a run needs.
type Extractor interface {
	ClassifyImpact(ctx context.Context, articles []nb.Article) (extract.Outcome[[]nb.Impact], error)
	ExtractSectors(ctx context.Context, articles []nb.Article) (extract.Outcome[[]string], error)
	MarkMajor(ctx context.Context, articles []nb.Article, perGroup int) (extract.MajorResult, error)
	SelectTop(ctx context.Context, articles []nb.Article, k int, opts ...extract.SelectOption) (extract.Outcome[[]int64], error)
	Summarize(ctx context.Context, content string, band extract.WordBand) (extract.Outcome[string], error)
	Comment(ctx context.Context, articles []nb.Article, t nb.NewsType) (extract.Outcome[string], error)
}

var _ Extractor = (*extract.Extractor)(nil)

// Result is the analysed batch.
type Result struct {
	Mode        Mode
	GeneratedAt time.Time

	// Articles are the input articles with Impact, Sectors and Major set.
	Articles []nb.Article

	// Top holds the selected article IDs per news type, in selection order.
	Top map[nb.NewsType][]int64

	// Summaries maps a top article ID to its summary.
	Summaries map[int64]string

	// Comments holds the weekly commentary per news type.
	Comments map[nb.NewsType]string

	Warnings    []string
	GroupErrors map[nb.NewsType]error
}

// Article returns the analysed article with the given ID.
func (r *Result) Article(id int64) (nb.Article, bool) {
	for _, a := range r.Articles {
		if a.ID == id {
			return a, true
		}
	}
	return nb.Article{}, false
}

// Runner executes runs with one extractor.
type Runner struct {
	x      Extractor
	logger *slog.Logger
}

// New creates a runner. A nil logger uses slog.Default().
func New(x Extractor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{x: x, logger: logger}
}

// Run analyses articles. The input slice is not modified. Tolerant steps
// record warnings; a strict top selection failure aborts the run.
func (r *Runner) Run(ctx context.Context, articles []nb.Article, opts Options) (*Result, error) {
	if len(articles) == 0 {
		return nil, nb.ErrEmptyInput
	}
	if opts.TopPerType < 1 || opts.MajorPerGroup < 1 {
		return nil, nb.NewUserInputError("top and major counts must be positive", 400, nil)
	}

	log := r.logger.With("mode", opts.Mode, "articles", len(articles))
	res := &Result{
		Mode:        opts.Mode,
		GeneratedAt: time.Now().UTC(),
		Articles:    append([]nb.Article(nil), articles...),
		Top:         make(map[nb.NewsType][]int64),
		Summaries:   make(map[int64]string),
		Comments:    make(map[nb.NewsType]string),
		GroupErrors: make(map[nb.NewsType]error),
	}

	impacts, err := r.x.ClassifyImpact(ctx, res.Articles)
	if err != nil {
		return nil, fmt.Errorf("classify impact: %w", err)
	}
	res.Warnings = append(res.Warnings, prefixed("impact", impacts.Warnings)...)
	for i := range res.Articles {
		res.Articles[i].Impact = impacts.Value[i]
	}

	sectors, err := r.x.ExtractSectors(ctx, res.Articles)
	if err != nil {
		return nil, fmt.Errorf("extract sectors: %w", err)
	}
	res.Warnings = append(res.Warnings, prefixed("sectors", sectors.Warnings)...)
	for i := range res.Articles {
		res.Articles[i].Sectors = sectors.Value[i]
	}

	major, err := r.x.MarkMajor(ctx, res.Articles, opts.MajorPerGroup)
	if err != nil {
		return nil, fmt.Errorf("mark major: %w", err)
	}
	res.Warnings = append(res.Warnings, prefixed("major", major.Warnings)...)
	for t, gerr := range major.GroupErrors {
		res.GroupErrors[t] = gerr
	}
	markMajor(res.Articles, major.IDs)

	groups := nb.GroupByType(res.Articles)
	for _, t := range nb.NewsTypes {
		candidates := groups[t]
		if opts.Mode == ModeDaily {
			candidates = withoutMajor(candidates)
		}
		if len(candidates) == 0 {
			continue
		}

		k := min(opts.TopPerType, len(candidates))
		task := fmt.Sprintf("%s_top:%s", opts.Mode, t)
		top, err := r.x.SelectTop(ctx, candidates, k, extract.CapPerImpact(opts.CapPerImpact), extract.AsTask(task))
		if err != nil {
			return nil, fmt.Errorf("select top %s: %w", t, err)
		}
		res.Warnings = append(res.Warnings, prefixed(task, top.Warnings)...)
		res.Top[t] = top.Value
		log.Info("top articles selected", "news_type", t, "candidates", len(candidates), "selected", len(top.Value), "attempts", top.Attempts)
	}

	if opts.Mode == ModeWeekly && opts.Comment {
		if err := r.comment(ctx, res); err != nil {
			return nil, err
		}
	}

	if opts.Summarize {
		if err := r.summarize(ctx, res, opts.Band()); err != nil {
			return nil, err
		}
	}

	log.Info("analysis complete", "warnings", len(res.Warnings), "group_errors", len(res.GroupErrors))
	return res, nil
}

func (r *Runner) summarize(ctx context.Context, res *Result, band extract.WordBand) error {
	for _, t := range nb.NewsTypes {
		for _, id := range res.Top[t] {
			a, _ := res.Article(id)
			sum, err := r.x.Summarize(ctx, a.Content, band)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				res.Warnings = append(res.Warnings, fmt.Sprintf("summary %d: %v", id, err))
				continue
			}
			res.Warnings = append(res.Warnings, prefixed(fmt.Sprintf("summary %d", id), sum.Warnings)...)
			res.Summaries[id] = sum.Value
		}
	}
	return nil
}

// comment writes one commentary per news type over its top articles. A
// failed commentary is a warning; the run goes on without it.
func (r *Runner) comment(ctx context.Context, res *Result) error {
	for _, t := range nb.NewsTypes {
		ids := res.Top[t]
		if len(ids) == 0 {
			continue
		}
		top := make([]nb.Article, 0, len(ids))
		for _, id := range ids {
			if a, ok := res.Article(id); ok {
				top = append(top, a)
			}
		}

		c, err := r.x.Comment(ctx, top, t)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("comment %s: %v", t, err))
			continue
		}
		res.Warnings = append(res.Warnings, prefixed("comment "+string(t), c.Warnings)...)
		res.Comments[t] = c.Value
	}
	return nil
}

func markMajor(articles []nb.Article, ids []int64) {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range articles {
		if _, ok := set[articles[i].ID]; ok {
			articles[i].Major = true
		}
	}
}

func withoutMajor(articles []nb.Article) []nb.Article {
	out := make([]nb.Article, 0, len(articles))
	for _, a := range articles {
		if !a.Major {
			out = append(out, a)
		}
	}
	return out
}

func prefixed(prefix string, warnings []string) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = prefix + ": " + w
	}
	return out
}
