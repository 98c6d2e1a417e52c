package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	nb "github.com/spetersoncode/newsbrief"
)

// Contract is the shape a raw answer must have to be accepted. The set of
// contracts is closed: DelimitedList, LabelSequence, TagSequence, JSONShape,
// WordBand and SentenceBand.
type Contract interface {
	Name() string
	contract()
}

func violation(c Contract, raw, format string, args ...any) *nb.ContractError {
	return &nb.ContractError{Contract: c.Name(), Raw: raw, Reason: fmt.Sprintf(format, args...)}
}

// DelimitedList requires exactly Count non-negative integers joined by
// Delimiter and nothing else. Whitespace, including newlines, is removed
// before matching.
type DelimitedList struct {
	Count     int
	Delimiter string
}

func (DelimitedList) Name() string { return "delimited_list" }
func (DelimitedList) contract()    {}

func (c DelimitedList) pattern() *regexp.Regexp {
	d := regexp.QuoteMeta(c.Delimiter)
	return regexp.MustCompile(fmt.Sprintf(`^(\d+%s){%d}\d+$`, d, c.Count-1))
}

// Validate parses raw into exactly Count integers.
func (c DelimitedList) Validate(raw string) ([]int64, *nb.ContractError) {
	if c.Count < 1 {
		return nil, violation(c, raw, "count must be positive, got %d", c.Count)
	}
	norm := strings.Join(strings.Fields(raw), "")
	if !c.pattern().MatchString(norm) {
		return nil, violation(c, raw, "want exactly %d integers separated by %q", c.Count, c.Delimiter)
	}

	parts := strings.Split(norm, c.Delimiter)
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, violation(c, raw, "item %d: %v", i+1, err)
		}
		out[i] = n
	}
	return out, nil
}

// Encode renders items in the form Validate accepts.
func (c DelimitedList) Encode(items []int64) string {
	parts := make([]string, len(items))
	for i, n := range items {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, c.Delimiter)
}

// LabelSequence is a tolerant contract: Count labels joined by Delimiter,
// each one of Allowed. Invalid or missing labels become Default.
type LabelSequence struct {
	Count     int
	Delimiter string
	Allowed   []string
	Default   string
}

func (LabelSequence) Name() string { return "label_sequence" }
func (LabelSequence) contract()    {}

// Coerce always returns exactly Count labels, each a member of Allowed or
// Default. Labels match exactly after trimming surrounding whitespace.
// Every repair is reported as a warning.
func (c LabelSequence) Coerce(raw string) (labels []string, warnings []string) {
	items := splitItems(raw, c.Delimiter)
	labels = make([]string, c.Count)

	for i := range labels {
		labels[i] = c.Default
		if i >= len(items) {
			continue
		}
		v := strings.TrimSpace(items[i])
		if label, ok := c.match(v); ok {
			labels[i] = label
			continue
		}
		if v != "" {
			warnings = append(warnings, fmt.Sprintf("item %d: %q is not an allowed label, using %q", i+1, v, c.Default))
		}
	}

	switch {
	case len(items) < c.Count:
		warnings = append(warnings, fmt.Sprintf("answer has %d labels, want %d; padded with %q", len(items), c.Count, c.Default))
	case len(items) > c.Count:
		warnings = append(warnings, fmt.Sprintf("answer has %d labels, want %d; truncated", len(items), c.Count))
	}
	return labels, warnings
}

func (c LabelSequence) match(v string) (string, bool) {
	for _, a := range c.Allowed {
		if v == a {
			return a, true
		}
	}
	return "", false
}

// TagSequence is a tolerant contract for free-form tags: Count items joined
// by Delimiter, each holding tags joined by TagDelimiter.
type TagSequence struct {
	Count        int
	Delimiter    string
	TagDelimiter string
}

func (TagSequence) Name() string { return "tag_sequence" }
func (TagSequence) contract()    {}

// Coerce returns exactly Count items. Missing items are "", excess items are
// dropped. Tags are trimmed, empty tags removed and duplicates dropped in
// first-seen order; the result joins them with TagDelimiter and a space.
func (c TagSequence) Coerce(raw string) (items []string, warnings []string) {
	parts := splitItems(raw, c.Delimiter)
	items = make([]string, c.Count)
	for i := range items {
		if i < len(parts) {
			items[i] = strings.Join(dedupTags(parts[i], c.TagDelimiter), c.TagDelimiter+" ")
		}
	}

	switch {
	case len(parts) < c.Count:
		warnings = append(warnings, fmt.Sprintf("answer has %d items, want %d; padded with empty tags", len(parts), c.Count))
	case len(parts) > c.Count:
		warnings = append(warnings, fmt.Sprintf("answer has %d items, want %d; truncated", len(parts), c.Count))
	}
	return items, warnings
}

func dedupTags(item, delim string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, t := range strings.Split(item, delim) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

// splitItems splits a trimmed answer. A blank answer has no items.
func splitItems(raw, delim string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, delim)
}

// JSONShape requires a JSON object holding every key in Keys, each mapped to
// an array of exactly Length integers. The object may be surrounded by other
// text; the first balanced {...} block is used.
type JSONShape struct {
	Keys   []string
	Length int
}

func (JSONShape) Name() string { return "json_shape" }
func (JSONShape) contract()    {}

// Validate extracts and checks the object. Keys not in Keys are ignored and
// absent from the result.
func (c JSONShape) Validate(raw string) (map[string][]int64, *nb.ContractError) {
	obj, ok := firstObject(raw)
	if !ok {
		return nil, violation(c, raw, "no JSON object found")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return nil, violation(c, raw, "invalid JSON: %v", err)
	}

	out := make(map[string][]int64, len(c.Keys))
	for _, key := range c.Keys {
		field, ok := fields[key]
		if !ok {
			return nil, violation(c, raw, "missing key %q", key)
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(field, &elems); err != nil {
			return nil, violation(c, raw, "key %q: not an array", key)
		}
		if len(elems) != c.Length {
			return nil, violation(c, raw, "key %q: has %d items, want %d", key, len(elems), c.Length)
		}
		ints := make([]int64, len(elems))
		for i, e := range elems {
			n, err := strconv.ParseInt(strings.TrimSpace(string(e)), 10, 64)
			if err != nil {
				return nil, violation(c, raw, "key %q: item %d is not an integer", key, i+1)
			}
			ints[i] = n
		}
		out[key] = ints
	}
	return out, nil
}

// Encode renders v as a JSON object Validate accepts.
func (c JSONShape) Encode(v map[string][]int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// firstObject returns the first balanced {...} block in s, skipping braces
// inside JSON strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// WordBand requires an answer of Min to Max words. Sentences is the sentence
// count requested in the prompt and is not validated.
type WordBand struct {
	Min       int
	Max       int
	Sentences int
}

// Summary bands.
var (
	DailyBand  = WordBand{Min: 70, Max: 90, Sentences: 5}
	WeeklyBand = WordBand{Min: 40, Max: 60, Sentences: 3}
)

func (WordBand) Name() string { return "word_band" }
func (WordBand) contract()    {}

// Words counts whitespace separated words.
func (c WordBand) Words(s string) int { return len(strings.Fields(s)) }

// Validate checks the word count and returns the trimmed answer.
func (c WordBand) Validate(raw string) (string, *nb.ContractError) {
	text := strings.TrimSpace(raw)
	n := c.Words(text)
	if n < c.Min || n > c.Max {
		return text, violation(c, raw, "has %d words, want %d-%d", n, c.Min, c.Max)
	}
	return text, nil
}

// SentenceBand requires exactly Sentences sentences of Min to Max words
// each, written as one paragraph.
type SentenceBand struct {
	Sentences int
	Min       int
	Max       int
}

// CommentBand is the shape of a weekly market commentary.
var CommentBand = SentenceBand{Sentences: 5, Min: 13, Max: 15}

func (SentenceBand) Name() string { return "sentence_band" }
func (SentenceBand) contract()    {}

// Validate joins the answer into one paragraph and checks the sentence
// count, then the length of every sentence.
func (c SentenceBand) Validate(raw string) (string, *nb.ContractError) {
	text := strings.Join(strings.Fields(raw), " ")
	sentences := splitSentences(text)
	if len(sentences) != c.Sentences {
		return text, violation(c, raw, "has %d sentences, want %d", len(sentences), c.Sentences)
	}
	for i, s := range sentences {
		if n := len(strings.Fields(s)); n < c.Min || n > c.Max {
			return text, violation(c, raw, "sentence %d has %d words, want %d-%d", i+1, n, c.Min, c.Max)
		}
	}
	return text, nil
}

// splitSentences splits single-spaced text after '.', '!' or '?' when the
// mark ends the text or is followed by a space, so "6.8%" stays whole.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 < len(text) && text[i+1] != ' ' {
				continue
			}
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
