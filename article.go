package newsbrief

import (
	"fmt"
	"strings"
	"time"
)

// NewsType is the editorial group an article belongs to.
type NewsType string

const (
	NewsDomestic      NewsType = "domestic"
	NewsInternational NewsType = "international"
	NewsEnterprise    NewsType = "enterprise"
)

// NewsTypes lists every group in report order.
var NewsTypes = []NewsType{NewsDomestic, NewsInternational, NewsEnterprise}

// Valid reports whether t is one of the known groups.
func (t NewsType) Valid() bool {
	switch t {
	case NewsDomestic, NewsInternational, NewsEnterprise:
		return true
	}
	return false
}

// Impact is the market sentiment label assigned to an article.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// DefaultImpact is substituted for missing or unrecognised labels.
const DefaultImpact = ImpactNeutral

// Impacts is the closed label set, in prompt order.
var Impacts = []Impact{ImpactPositive, ImpactNegative, ImpactNeutral}

// ParseImpact accepts a label case-insensitively.
func ParseImpact(s string) (Impact, error) {
	switch Impact(strings.ToLower(strings.TrimSpace(s))) {
	case ImpactPositive:
		return ImpactPositive, nil
	case ImpactNegative:
		return ImpactNegative, nil
	case ImpactNeutral:
		return ImpactNeutral, nil
	}
	return "", fmt.Errorf("unknown impact %q", s)
}

// Article is a scraped news item plus the analysis attached to it.
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Type        NewsType  `json:"type,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`

	Impact  Impact `json:"impact,omitempty"`
	Sectors string `json:"sectors,omitempty"`
	Major   bool   `json:"major,omitempty"`
}

// GroupByType partitions articles by NewsType, preserving input order inside
// each group. Articles with an unknown type are dropped.
func GroupByType(articles []Article) map[NewsType][]Article {
	groups := make(map[NewsType][]Article)
	for _, a := range articles {
		if !a.Type.Valid() {
			continue
		}
		groups[a.Type] = append(groups[a.Type], a)
	}
	return groups
}
