package extract

import (
	"context"
	"fmt"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/catalog"
)

// SelectOption configures SelectTop.
type SelectOption func(*selectOptions)

type selectOptions struct {
	task         string
	capPerImpact int
	maxAttempts  int
}

// CapPerImpact asks the backend to pick at most n items sharing an impact
// label. The cap is best-effort: an answer exceeding it is accepted and a
// warning is recorded.
func CapPerImpact(n int) SelectOption {
	return func(o *selectOptions) {
		o.capPerImpact = n
	}
}

// AsTask names the call in events and errors.
func AsTask(name string) SelectOption {
	return func(o *selectOptions) {
		o.task = name
	}
}

// MaxAttempts overrides the attempt budget for one call.
func MaxAttempts(n int) SelectOption {
	return func(o *selectOptions) {
		o.maxAttempts = n
	}
}

// SelectTop picks exactly k article IDs. The answer must be k
// comma-separated integers, each the ID of an offered article, with no
// repeats; anything else is retried with stricter wording.
func (x *Extractor) SelectTop(ctx context.Context, articles []nb.Article, k int, opts ...SelectOption) (Outcome[[]int64], error) {
	o := selectOptions{task: TaskTop, maxAttempts: x.maxAttempts}
	for _, opt := range opts {
		opt(&o)
	}
	return x.selectTop(ctx, articles, k, o, func(attempt int) string {
		return topPrompt(articles, k, o.capPerImpact, attempt)
	})
}

func (x *Extractor) selectTop(ctx context.Context, articles []nb.Article, k int, o selectOptions, build func(int) string) (Outcome[[]int64], error) {
	if len(articles) == 0 {
		return Outcome[[]int64]{}, nb.ErrEmptyInput
	}
	if k < 1 || k > len(articles) {
		return Outcome[[]int64]{}, nb.NewUserInputError(
			fmt.Sprintf("%s: cannot select %d of %d articles", o.task, k, len(articles)), 400, nil)
	}

	contract := DelimitedList{Count: k, Delimiter: ","}
	domain := idSet(articles)

	out, err := runStrict(ctx, x, o.task, catalog.TierStandard, o.maxAttempts, build,
		func(raw string) ([]int64, *nb.ContractError) {
			ids, cerr := contract.Validate(raw)
			if cerr != nil {
				return nil, cerr
			}
			if cerr := checkDomain(contract, raw, ids, domain); cerr != nil {
				return nil, cerr
			}
			return ids, nil
		})
	if err != nil {
		return out, err
	}

	if o.capPerImpact > 0 {
		out.Warnings = append(out.Warnings, impactCapWarnings(articles, out.Value, o.capPerImpact)...)
	}
	return out, nil
}

// wireKeys are the JSON keys used for each news type in grouped selection.
var wireKeys = map[nb.NewsType]string{
	nb.NewsDomestic:      "trong_nuoc",
	nb.NewsInternational: "quoc_te",
	nb.NewsEnterprise:    "doanh_nghiep",
}

// GroupedContract is the JSON contract for k IDs per news type.
func GroupedContract(k int) JSONShape {
	keys := make([]string, len(nb.NewsTypes))
	for i, t := range nb.NewsTypes {
		keys[i] = wireKeys[t]
	}
	return JSONShape{Keys: keys, Length: k}
}

// SelectGrouped asks the backend to sort articles into the news types and
// pick exactly k IDs for each. Every ID must belong to an offered article
// and appear once across the whole result.
func (x *Extractor) SelectGrouped(ctx context.Context, articles []nb.Article, k int) (Outcome[map[nb.NewsType][]int64], error) {
	var zero Outcome[map[nb.NewsType][]int64]
	if len(articles) == 0 {
		return zero, nb.ErrEmptyInput
	}
	need := k * len(nb.NewsTypes)
	if k < 1 || need > len(articles) {
		return zero, nb.NewUserInputError(
			fmt.Sprintf("%s: cannot select %d per group from %d articles", TaskGrouped, k, len(articles)), 400, nil)
	}

	contract := GroupedContract(k)
	domain := idSet(articles)

	return runStrict(ctx, x, TaskGrouped, catalog.TierStandard, x.groupedMaxAttempts,
		func(attempt int) string { return groupedPrompt(articles, k, attempt) },
		func(raw string) (map[nb.NewsType][]int64, *nb.ContractError) {
			byKey, cerr := contract.Validate(raw)
			if cerr != nil {
				return nil, cerr
			}
			out := make(map[nb.NewsType][]int64, len(nb.NewsTypes))
			all := make([]int64, 0, need)
			for _, t := range nb.NewsTypes {
				out[t] = byKey[wireKeys[t]]
				all = append(all, out[t]...)
			}
			if cerr := checkDomain(contract, raw, all, domain); cerr != nil {
				return nil, cerr
			}
			return out, nil
		})
}

func idSet(articles []nb.Article) map[int64]struct{} {
	set := make(map[int64]struct{}, len(articles))
	for _, a := range articles {
		set[a.ID] = struct{}{}
	}
	return set
}

// checkDomain rejects IDs that were not offered or appear twice.
func checkDomain(c Contract, raw string, ids []int64, domain map[int64]struct{}) *nb.ContractError {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := domain[id]; !ok {
			return violation(c, raw, "id %d was not offered", id)
		}
		if _, dup := seen[id]; dup {
			return violation(c, raw, "id %d selected twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// impactCapWarnings reports impact labels chosen more than limit times.
func impactCapWarnings(articles []nb.Article, selected []int64, limit int) []string {
	impacts := make(map[int64]nb.Impact, len(articles))
	for _, a := range articles {
		impacts[a.ID] = a.Impact
	}
	counts := make(map[nb.Impact]int)
	for _, id := range selected {
		if imp := impacts[id]; imp != "" {
			counts[imp]++
		}
	}

	var warnings []string
	for _, imp := range nb.Impacts {
		if n := counts[imp]; n > limit {
			warnings = append(warnings, fmt.Sprintf("%d selected items are %s, cap is %d", n, imp, limit))
		}
	}
	return warnings
}
