// Package report turns an analysed batch into a digest and publishes it.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/pipeline"
)

// Item is one top article in a digest.
type Item struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	URL     string    `json:"url,omitempty"`
	Source  string    `json:"source,omitempty"`
	Impact  nb.Impact `json:"impact"`
	Sectors []string  `json:"sectors,omitempty"`
	Major   bool      `json:"major,omitempty"`
	Summary string    `json:"summary,omitempty"`
}

// Section holds the top articles of one news type and, in weekly digests,
// the commentary written over them.
type Section struct {
	Type    nb.NewsType `json:"type"`
	Comment string      `json:"comment,omitempty"`
	Items   []Item      `json:"items"`
}

// SectorCount is one bar of the sector histogram.
type SectorCount struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
}

// Digest is the published form of a run.
type Digest struct {
	ID          string        `json:"id"`
	Mode        pipeline.Mode `json:"mode"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Articles    int           `json:"articles"`
	Sections    []Section     `json:"sections"`
	Major       []Item        `json:"major,omitempty"`
	Sectors     []SectorCount `json:"sectors"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// Build assembles a digest from a run result. Sections follow the news type
// order; the sector histogram counts every analysed article and is sorted by
// count, then name.
func Build(res *pipeline.Result) Digest {
	d := Digest{
		ID:          uuid.NewString(),
		Mode:        res.Mode,
		GeneratedAt: res.GeneratedAt,
		Articles:    len(res.Articles),
		Sectors:     []SectorCount{},
		Warnings:    append([]string(nil), res.Warnings...),
	}

	for _, t := range nb.NewsTypes {
		ids, ok := res.Top[t]
		if !ok {
			continue
		}
		sec := Section{Type: t, Comment: res.Comments[t], Items: make([]Item, 0, len(ids))}
		for _, id := range ids {
			a, ok := res.Article(id)
			if !ok {
				continue
			}
			sec.Items = append(sec.Items, itemOf(a, res.Summaries[id]))
		}
		d.Sections = append(d.Sections, sec)
	}
	for t, err := range res.GroupErrors {
		d.Warnings = append(d.Warnings, fmt.Sprintf("major %s: %v", t, err))
	}
	sort.Strings(d.Warnings[len(res.Warnings):])

	counts := make(map[string]int)
	for _, a := range res.Articles {
		if a.Major {
			d.Major = append(d.Major, itemOf(a, res.Summaries[a.ID]))
		}
		for _, s := range splitSectors(a.Sectors) {
			counts[s]++
		}
	}
	for s, n := range counts {
		d.Sectors = append(d.Sectors, SectorCount{Sector: s, Count: n})
	}
	sort.Slice(d.Sectors, func(i, j int) bool {
		if d.Sectors[i].Count != d.Sectors[j].Count {
			return d.Sectors[i].Count > d.Sectors[j].Count
		}
		return d.Sectors[i].Sector < d.Sectors[j].Sector
	})
	return d
}

// Key is the object key of the digest: digests/<mode>/<date>-<id>.json.
func (d Digest) Key() string {
	return fmt.Sprintf("digests/%s/%s-%s.json", d.Mode, d.GeneratedAt.UTC().Format("2006-01-02"), d.ID)
}

// JSON renders the digest with indentation.
func (d Digest) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func itemOf(a nb.Article, summary string) Item {
	impact := a.Impact
	if impact == "" {
		impact = nb.DefaultImpact
	}
	return Item{
		ID:      a.ID,
		Title:   a.Title,
		URL:     a.URL,
		Source:  a.Source,
		Impact:  impact,
		Sectors: splitSectors(a.Sectors),
		Major:   a.Major,
		Summary: summary,
	}
}

func splitSectors(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
