package extract

import (
	"context"
	"fmt"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/catalog"
)

// Comment writes the weekly market commentary for one news type from the
// articles of that type, usually the ones already selected as top. The
// answer must match CommentBand; it is retried like Summarize and, once the
// budget is spent, the last answer is returned with warnings.
func (x *Extractor) Comment(ctx context.Context, articles []nb.Article, t nb.NewsType) (Outcome[string], error) {
	if !t.Valid() {
		return Outcome[string]{}, nb.NewUserInputError(fmt.Sprintf("%s: unknown news type %q", TaskComment, t), 400, nil)
	}
	group := nb.GroupByType(articles)[t]
	if len(group) == 0 {
		return Outcome[string]{}, nb.ErrEmptyInput
	}

	return x.runProse(ctx, TaskComment+":"+string(t), catalog.TierStandard,
		func(attempt int) string { return commentPrompt(t, group, CommentBand, attempt) },
		CommentBand.Validate)
}
