package extract

import (
	"context"
	"fmt"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/catalog"
)

// Task names used in events and logs.
const (
	TaskImpact    = "classify_impact"
	TaskSectors   = "extract_sectors"
	TaskTop       = "select_top"
	TaskGrouped   = "select_grouped"
	TaskMajor     = "mark_major"
	TaskSummarize = "summarize"
	TaskComment   = "weekly_comment"
)

// ImpactContract is the label contract for n articles.
func ImpactContract(n int) LabelSequence {
	allowed := make([]string, len(nb.Impacts))
	for i, imp := range nb.Impacts {
		allowed[i] = string(imp)
	}
	return LabelSequence{
		Count:     n,
		Delimiter: "|",
		Allowed:   allowed,
		Default:   string(nb.DefaultImpact),
	}
}

// ClassifyImpact labels each article positive, negative or neutral. The
// result always has one label per article. Invalid or missing labels become
// neutral, and if no backend answers every label is neutral; both cases are
// reported as warnings rather than errors. Only context cancellation is
// returned as an error.
func (x *Extractor) ClassifyImpact(ctx context.Context, articles []nb.Article) (Outcome[[]nb.Impact], error) {
	out := Outcome[[]nb.Impact]{Value: []nb.Impact{}}
	if len(articles) == 0 {
		return out, nil
	}

	contract := ImpactContract(len(articles))
	out.Attempts = 1

	raw, err := x.runOnce(ctx, TaskImpact, catalog.TierFast, impactPrompt(articles))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		x.logger.Warn("impact classification failed, using defaults", "articles", len(articles), "error", err)
		out.Warnings = append(out.Warnings, fmt.Sprintf("generation failed, all items %q: %v", nb.DefaultImpact, err))
		raw = ""
	}

	labels, warnings := contract.Coerce(raw)
	if err == nil {
		out.Warnings = append(out.Warnings, warnings...)
	}
	out.Value = make([]nb.Impact, len(labels))
	for i, l := range labels {
		out.Value[i] = nb.Impact(l)
	}
	return out, nil
}

// SectorContract is the tag contract for n articles.
func SectorContract(n int) TagSequence {
	return TagSequence{Count: n, Delimiter: "|", TagDelimiter: ","}
}

// ExtractSectors tags each article with the sectors it concerns, as a comma
// separated list. The result always has one entry per article; articles
// without an answer get "". Like ClassifyImpact it degrades instead of
// failing.
func (x *Extractor) ExtractSectors(ctx context.Context, articles []nb.Article) (Outcome[[]string], error) {
	out := Outcome[[]string]{Value: []string{}}
	if len(articles) == 0 {
		return out, nil
	}

	contract := SectorContract(len(articles))
	out.Attempts = 1

	raw, err := x.runOnce(ctx, TaskSectors, catalog.TierFast, sectorPrompt(articles))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		x.logger.Warn("sector extraction failed, using empty tags", "articles", len(articles), "error", err)
		out.Warnings = append(out.Warnings, fmt.Sprintf("generation failed, all items untagged: %v", err))
		raw = ""
	}

	tags, warnings := contract.Coerce(raw)
	if err == nil {
		out.Warnings = append(out.Warnings, warnings...)
	}
	out.Value = tags
	return out, nil
}
