package extract

import (
	"context"
	"fmt"

	nb "github.com/spetersoncode/newsbrief"
)

// MajorResult is the outcome of MarkMajor.
type MajorResult struct {
	// IDs of the articles marked major, grouped in news type order.
	IDs []int64

	// Attempts is the number of selection attempts across all groups.
	Attempts int

	Warnings []string

	// GroupErrors holds the failure of each group whose selection failed.
	// Those groups have no major article.
	GroupErrors map[nb.NewsType]error
}

// MarkMajor picks perGroup major articles in every news type. A group with
// at most perGroup articles is accepted whole without asking the backend.
// A failing group is logged and recorded in GroupErrors; the other groups
// are unaffected. Only context cancellation is returned as an error.
func (x *Extractor) MarkMajor(ctx context.Context, articles []nb.Article, perGroup int) (MajorResult, error) {
	res := MajorResult{GroupErrors: make(map[nb.NewsType]error)}
	if perGroup < 1 {
		return res, nb.NewUserInputError(fmt.Sprintf("%s: per group count must be positive, got %d", TaskMajor, perGroup), 400, nil)
	}

	groups := nb.GroupByType(articles)
	for _, t := range nb.NewsTypes {
		group := groups[t]
		if len(group) == 0 {
			continue
		}
		if len(group) <= perGroup {
			for _, a := range group {
				res.IDs = append(res.IDs, a.ID)
			}
			continue
		}

		o := selectOptions{task: TaskMajor + ":" + string(t), maxAttempts: x.maxAttempts}
		out, err := x.selectTop(ctx, group, perGroup, o, func(attempt int) string {
			return majorPrompt(t, group, perGroup, attempt)
		})
		res.Attempts += out.Attempts
		res.Warnings = append(res.Warnings, out.Warnings...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			x.logger.Warn("major selection failed for group", "news_type", t, "articles", len(group), "error", err)
			res.GroupErrors[t] = err
			continue
		}
		res.IDs = append(res.IDs, out.Value...)
	}
	return res, nil
}
