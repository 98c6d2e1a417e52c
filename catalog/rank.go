package catalog

import "sort"

// fastLineages is the emission order of the fast chain: the full-power 2.0
// flash first, then the lite variants from the newest generation down.
var fastLineages = []string{
	"gemini-2.0-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash-lite",
}

// FastChain selects one backend per fast lineage. Within a lineage the base
// identifier wins over a fixed build, a fixed build over a preview; among
// fixed builds the highest number wins and among previews the latest date.
func FastChain(ids []string) Chain {
	candidates := make(map[string][]Descriptor, len(fastLineages))
	for _, id := range ids {
		d, ok := Parse(id)
		if !ok || d.Reasoning {
			continue
		}
		candidates[d.Lineage] = append(candidates[d.Lineage], d)
	}

	picks := make([]Descriptor, 0, len(fastLineages))
	for _, lineage := range fastLineages {
		options := candidates[lineage]
		if len(options) == 0 {
			continue
		}
		sort.SliceStable(options, func(i, j int) bool {
			return channelLess(options[i], options[j])
		})
		picks = append(picks, options[0])
	}
	return NewChain(picks...)
}

// StandardChain ranks the full-power gemini-2.5-flash backends and appends
// the fast chain as an always-available tail. Ordering keys: reasoning
// variants first, then channel priority, then build number descending or
// preview date descending.
func StandardChain(ids []string) Chain {
	var ranked []Descriptor
	for _, id := range ids {
		d, ok := Parse(id)
		if !ok || d.Family != FamilyReasoning {
			continue
		}
		ranked = append(ranked, d)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Reasoning != b.Reasoning {
			return a.Reasoning
		}
		return channelLess(a, b)
	})

	return NewChain(ranked...).Append(FastChain(ids).Descriptors()...)
}

func channelLess(a, b Descriptor) bool {
	if a.Channel != b.Channel {
		return a.Channel < b.Channel
	}
	switch a.Channel {
	case ChannelFixed:
		return a.Build > b.Build
	case ChannelPreview:
		return a.Preview.After(b.Preview)
	}
	return false
}
