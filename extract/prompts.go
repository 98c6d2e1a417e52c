package extract

import (
	"fmt"
	"strings"

	nb "github.com/spetersoncode/newsbrief"
)

const impactInstructions = `You are an analyst covering the Vietnamese stock market.
Classify the market impact of each news item below.

INSTRUCTIONS
1. Put every item in exactly one of three groups: "positive", "negative" or "neutral".
2. "positive": good for the market as a whole.
3. "negative": bad for the market as a whole.
4. "neutral": no clear effect, or personnel and social news.

OUTPUT FORMAT (VERY IMPORTANT)
- Return only: label 1|label 2|label 3|...
- Separate items with a vertical bar "|", one label per item, in input order.
- Do NOT explain and do NOT add notes. Return only the result string.`

const sectorInstructions = `You are an analyst covering the Vietnamese stock market with broad knowledge of its industries.
Identify the economic sectors each news item below is about.

INSTRUCTIONS
1. For every item list all affected sectors or industries.
2. Use common, precise industry terms (for example "Banking", "Real estate", "Steel", "Renewable energy", "Logistics").
3. If an item affects the whole economy or the whole stock market, use "Whole market".

OUTPUT FORMAT (VERY IMPORTANT)
- Return only: Sector A, Sector B|Sector C|Sector D, Sector E|...
- Separate items with a vertical bar "|", in input order.
- Within an item separate sectors with a comma ",".
- Do NOT explain and do NOT add notes. Return only the result string.`

// numberedItems renders articles as "Item N" blocks in input order.
func numberedItems(articles []nb.Article) string {
	var sb strings.Builder
	for i, a := range articles {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Item %d:\nTitle: %s\nContent: %s", i+1, oneLine(a.Title), oneLine(a.Content))
	}
	return sb.String()
}

func impactPrompt(articles []nb.Article) string {
	return impactInstructions + "\n\n--- NEWS ITEMS ---\n\n" + numberedItems(articles)
}

func sectorPrompt(articles []nb.Article) string {
	return sectorInstructions + "\n\n--- NEWS ITEMS ---\n\n" + numberedItems(articles)
}

// selectionRows renders "id|title|impact" lines.
func selectionRows(articles []nb.Article) string {
	var sb strings.Builder
	sb.WriteString("id|title|impact\n")
	for _, a := range articles {
		impact := a.Impact
		if impact == "" {
			impact = nb.DefaultImpact
		}
		fmt.Fprintf(&sb, "%d|%s|%s\n", a.ID, oneLine(a.Title), impact)
	}
	return sb.String()
}

// topPrompt asks for exactly k ids. Later attempts repeat the format rule
// more forcefully.
func topPrompt(articles []nb.Article, k, capPerImpact int, attempt int) string {
	var sb strings.Builder
	sb.WriteString(`From the data below, select the most important news using these steps.

1. Input
- One line per item: original id, title and impact. Ids may be non-contiguous and need not start at 0.

2. Steps
Step A: Drop items that cover the same event, policy, company or figure. Keep only the most complete, general title for each topic.
`)
	fmt.Fprintf(&sb, "Step B: Select exactly %d of the remaining items with the strongest effect on the macro economy, policy, financial markets, major international events or large companies.\n", k)
	if capPerImpact > 0 {
		fmt.Fprintf(&sb, "- Do not select more than %d items with the same impact (positive, negative, neutral).\n", capPerImpact)
	}
	fmt.Fprintf(&sb, `
3. Output format
- Return exactly %d integers, the ids chosen in Step B, separated by commas.
- Example: %s
`, k, exampleIDs(k))
	sb.WriteString(strictness(attempt))
	sb.WriteString("\n(Input data below this line)\n")
	sb.WriteString(selectionRows(articles))
	return sb.String()
}

// majorPrompt asks an editor to pick the k most influential items of one group.
func majorPrompt(group nb.NewsType, articles []nb.Article, k int, attempt int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an experienced financial news editor in Vietnam.
Select the %d most important and influential items from the %q news list below.

Selection criteria:
- Macro impact reaching the whole market or a large industry.
- Important government or State Bank policy.
- Major events at leading listed companies: M&A, unusual business results.
- New investment trends and large capital flows.

Every item has a unique id.

`, k, group)
	for _, a := range articles {
		fmt.Fprintf(&sb, "[id: %d]\nTitle: %s\nContent: %s\n", a.ID, oneLine(a.Title), oneLine(a.Content))
	}
	fmt.Fprintf(&sb, `---
Compare all items, then return ONLY the ids of the %d most important ones.
Format: integers separated by commas with no explanation or other characters.
Example: %s
`, k, exampleIDs(k))
	sb.WriteString(strictness(attempt))
	return sb.String()
}

// groupedPrompt asks for k ids per group as a JSON object.
func groupedPrompt(articles []nb.Article, k int, attempt int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Classify and filter the news below following these instructions.

1. Input
Each line has the form "id|title|impact".

2. Steps
Step A: Put every item in one of three groups: %q, %q, %q.
- %q: macro economy, policy and law inside Vietnam.
- %q: economy, finance and politics of other regions.
- %q: a specific company listed on the Vietnamese stock exchange.
Step B: Drop duplicated topics, keeping the most general title per topic.
Step C: Select the %d most important items of each group.

3. Output format
- Return a single valid JSON object with exactly the keys %q, %q and %q.
- Each value is an array of exactly %d integer ids.
- Do NOT include any explanation or other characters.
Example:
{"%s": %s, "%s": %s, "%s": %s}
`,
		wireKeys[nb.NewsDomestic], wireKeys[nb.NewsInternational], wireKeys[nb.NewsEnterprise],
		wireKeys[nb.NewsDomestic], wireKeys[nb.NewsInternational], wireKeys[nb.NewsEnterprise],
		k,
		wireKeys[nb.NewsDomestic], wireKeys[nb.NewsInternational], wireKeys[nb.NewsEnterprise],
		k,
		wireKeys[nb.NewsDomestic], exampleArray(k, 0),
		wireKeys[nb.NewsInternational], exampleArray(k, 20),
		wireKeys[nb.NewsEnterprise], exampleArray(k, 50),
	)
	sb.WriteString(strictness(attempt))
	sb.WriteString("\nRaw input:\n")
	sb.WriteString(selectionRows(articles))
	return sb.String()
}

// summaryPrompt asks for a one-paragraph summary. Later attempts pin the
// sentence length more tightly.
func summaryPrompt(content string, band WordBand, attempt int) string {
	perSentence := "each sentence about 13-16 words"
	switch {
	case attempt == 2:
		perSentence = "each sentence EXACTLY 14 words"
	case attempt > 2:
		perSentence = "STRICT: each sentence EXACTLY 14 words, no more, no fewer"
	}

	return fmt.Sprintf(`Summarize the following article:
%s

STRICT REQUIREMENTS:
- EXACTLY %d SENTENCES, %s (%d-%d words in total)
- INCLUDE CONCRETE FIGURES
- NO INTRODUCTORY PHRASES
- PRESENT ONLY THE CORE INFORMATION
- START DIRECTLY WITH THE MAIN CONTENT
- VERY IMPORTANT: write a single paragraph
`, strings.TrimSpace(content), band.Sentences, perSentence, band.Min, band.Max)
}

// commentPrompt asks for a market commentary over "title|content|impact|sectors"
// rows. Later attempts repeat the sentence rules more forcefully.
func commentPrompt(t nb.NewsType, articles []nb.Article, band SentenceBand, attempt int) string {
	var rows strings.Builder
	rows.WriteString("title|content|impact|sectors")
	for _, a := range articles {
		fmt.Fprintf(&rows, "\n%s|%s|%s|%s", oneLine(a.Title), oneLine(a.Content), a.Impact, oneLine(a.Sectors))
	}

	length := fmt.Sprintf("- Exactly %d sentences.\n- Every sentence has %d to %d words.", band.Sentences, band.Min, band.Max)
	if attempt > 1 {
		length += fmt.Sprintf("\n- STRICT: your previous answer was rejected. Count the words of every sentence; each must have %d to %d words, and there must be exactly %d sentences.", band.Min, band.Max, band.Sentences)
	}

	return fmt.Sprintf(`You are a market analyst. Below is a table of short %s news items, one per line, with the fields title, content, impact and sectors.

Write a single concise paragraph that synthesizes all of the information in the table.

1. Length:
%s

2. Structure:
- Sentence 1: the main view or most prominent trend across the news.
- Sentence 2: the most important cause, driver or positive factor behind that trend.
- Sentence 3: a difficulty, risk or contrary piece of information holding it back.
- Sentence 4: the concrete result or effect on a specific sector or group.
- Sentence 5: a conclusion or outlook that brings the points together.

3. Other rules:
- Use only the information in the table and add nothing else.
- Never mention any single news item.
- Focus on the macro economy rather than the stock market alone.
- Keep an objective, balanced tone.
- Output only the finished paragraph and do not repeat these instructions.

--- DATA ---
%s
`, t, length, rows.String())
}

func strictness(attempt int) string {
	switch {
	case attempt <= 1:
		return "\nFinal requirement: return only the result in the format above, with no explanation.\n"
	case attempt == 2:
		return "\nYour previous answer did not follow the format. Return ONLY the result in the exact format above. No words, no markdown, no explanation.\n"
	default:
		return "\nSTRICT: every previous answer was rejected by a machine parser. Output NOTHING except the result in the exact format above.\n"
	}
}

func exampleIDs(k int) string {
	ids := make([]string, k)
	for i := range ids {
		ids[i] = fmt.Sprint(4 + 7*i)
	}
	return strings.Join(ids, ",")
}

func exampleArray(k, base int) string {
	ids := make([]string, k)
	for i := range ids {
		ids[i] = fmt.Sprint(base + 5*i)
	}
	return "[" + strings.Join(ids, ", ") + "]"
}

// oneLine keeps a field from breaking the line and delimiter structure of a
// prompt.
func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", "/")
}
