package extract

import (
	"context"
	"fmt"
	"strings"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/catalog"
	"github.com/spetersoncode/newsbrief/dispatch"
)

// Summarize writes a one-paragraph summary of content whose length falls in
// band. Answers outside the band are retried with tighter wording; once the
// budget is spent the last answer is returned with a warning. A dispatch
// failure is retried too, and returned only when it happens on the last
// attempt.
func (x *Extractor) Summarize(ctx context.Context, content string, band WordBand) (Outcome[string], error) {
	if strings.TrimSpace(content) == "" {
		return Outcome[string]{}, nb.ErrEmptyInput
	}
	if band.Min < 1 || band.Max < band.Min {
		return Outcome[string]{}, nb.NewUserInputError(fmt.Sprintf("%s: invalid word band %d-%d", TaskSummarize, band.Min, band.Max), 400, nil)
	}

	return x.runProse(ctx, TaskSummarize, catalog.TierFast,
		func(attempt int) string { return summaryPrompt(content, band, attempt) },
		band.Validate)
}

// runProse drives a free-text task. Unlike runStrict, an answer that still
// misses its contract when the budget is spent is returned as is.
func (x *Extractor) runProse(ctx context.Context, task string, tier catalog.Tier, prompt func(attempt int) string, validate func(string) (string, *nb.ContractError)) (Outcome[string], error) {
	var out Outcome[string]
	chain, err := x.chains.Chain(ctx, tier)
	if err != nil {
		return out, err
	}

	maxAttempts := max(x.summaryMaxAttempts, 1)
	m := newMachine(task, x.events, x.logger)
	for attempt := 1; ; attempt++ {
		out.Attempts = attempt
		last := attempt >= maxAttempts

		m.to(StateDispatching, nil)
		raw, err := x.gen.Generate(ctx, chain, prompt(attempt), dispatch.ForTask(task))
		if err != nil {
			if last || ctx.Err() != nil {
				m.to(StateExhausted, err)
				return out, err
			}
			out.Warnings = append(out.Warnings, fmt.Sprintf("attempt %d: %v", attempt, err))
			m.to(StateRetry, err)
			m.to(StateBuilding, nil)
			continue
		}

		m.to(StateValidating, nil)
		text, cerr := validate(raw)
		out.Value = text
		if cerr == nil {
			m.to(StateSuccess, nil)
			return out, nil
		}
		out.Warnings = append(out.Warnings, cerr.Error())
		if last {
			// Accepted as is: prose of the wrong length is still usable.
			m.to(StateSuccess, nil)
			return out, nil
		}
		m.to(StateRetry, cerr)
		m.to(StateBuilding, nil)
	}
}
