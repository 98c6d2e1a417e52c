package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	nb "github.com/spetersoncode/newsbrief"
)

// Family groups backends that share a generation and a capability tier.
type Family string

const (
	FamilyFlash         Family = "fast-flash"              // gemini-2.0-flash
	FamilyFlashLite     Family = "fast-flash-lite"         // gemini-2.0-flash-lite
	FamilyReasoning     Family = "standard-reasoning"      // gemini-2.5-flash
	FamilyReasoningLite Family = "standard-reasoning-lite" // gemini-2.5-flash-lite
	FamilyExternal      Family = "external"                // configured non-Gemini backend
)

// Channel is the release channel encoded in an identifier suffix.
// Lower values rank first.
type Channel int

const (
	ChannelBase    Channel = iota + 1 // no suffix
	ChannelFixed                      // -NNN build suffix
	ChannelPreview                    // -preview-MM-DD suffix
)

func (c Channel) String() string {
	switch c {
	case ChannelBase:
		return "base"
	case ChannelFixed:
		return "fixed"
	case ChannelPreview:
		return "preview"
	}
	return "unknown"
}

// Descriptor is the structured metadata derived from a backend identifier.
// It is a value type and is never modified after Parse.
type Descriptor struct {
	ID         string
	Provider   nb.Provider
	Family     Family
	Generation string // "2.0" or "2.5"; empty for external backends
	Lineage    string // identifier with the release suffix removed
	Channel    Channel
	Build      int       // ChannelFixed only
	Preview    time.Time // ChannelPreview only; month and day are meaningful
	Reasoning  bool
}

var (
	flashPattern   = regexp.MustCompile(`^(gemini-(2\.0|2\.5)-flash(-lite)?)(?:-(\d{3})|-preview-(\d{2}-\d{2}))?$`)
	previewPattern = regexp.MustCompile(`-preview-(\d{2}-\d{2})`)
	buildPattern   = regexp.MustCompile(`-(\d{3})$`)
)

const reasoningPrefix = "gemini-2.5-flash"

const previewYear = "1900-"

// Parse derives a Descriptor from a raw identifier. The "models/" prefix used
// by the listing API is accepted. ok is false for identifiers that belong to no
// known family and for preview suffixes that are not a valid MM-DD date.
func Parse(id string) (Descriptor, bool) {
	id = strings.TrimPrefix(strings.TrimSpace(id), "models/")

	if m := flashPattern.FindStringSubmatch(id); m != nil {
		d := Descriptor{
			ID:         id,
			Provider:   nb.ProviderGoogle,
			Generation: m[2],
			Lineage:    m[1],
			Family:     familyOf(m[2], m[3] != ""),
		}
		if !applyChannel(&d, m[4], m[5]) {
			return Descriptor{}, false
		}
		return d, true
	}

	// Reasoning variants such as gemini-2.5-flash-thinking carry extra
	// segments the strict pattern rejects.
	if strings.HasPrefix(id, reasoningPrefix) && !strings.Contains(id, "lite") {
		d := Descriptor{
			ID:         id,
			Provider:   nb.ProviderGoogle,
			Generation: "2.5",
			Lineage:    reasoningPrefix,
			Family:     FamilyReasoning,
			Reasoning:  strings.Contains(id, "thinking"),
		}
		var build, date string
		if m := previewPattern.FindStringSubmatch(id); m != nil {
			date = m[1]
		} else if m := buildPattern.FindStringSubmatch(id); m != nil {
			build = m[1]
		}
		if !applyChannel(&d, build, date) {
			return Descriptor{}, false
		}
		return d, true
	}

	return Descriptor{}, false
}

// External builds a descriptor for a configured non-Gemini backend. Its ID is
// "provider:model" so it can never collide with a catalog identifier.
func External(provider nb.Provider, model string) Descriptor {
	return Descriptor{
		ID:       provider.String() + ":" + model,
		Provider: provider,
		Family:   FamilyExternal,
		Lineage:  model,
		Channel:  ChannelBase,
	}
}

// Model returns the identifier to send to the provider API.
func (d Descriptor) Model() string {
	if d.Family == FamilyExternal {
		return d.Lineage
	}
	return d.ID
}

func familyOf(generation string, lite bool) Family {
	switch {
	case generation == "2.0" && lite:
		return FamilyFlashLite
	case generation == "2.0":
		return FamilyFlash
	case lite:
		return FamilyReasoningLite
	default:
		return FamilyReasoning
	}
}

func applyChannel(d *Descriptor, build, date string) bool {
	switch {
	case build != "":
		n, err := strconv.Atoi(build)
		if err != nil {
			return false
		}
		d.Channel = ChannelFixed
		d.Build = n
	case date != "":
		// Dates are read in a non-leap year, so 02-29 is not a valid preview.
		t, err := time.Parse("2006-01-02", previewYear+date)
		if err != nil {
			return false
		}
		d.Channel = ChannelPreview
		d.Preview = t
	default:
		d.Channel = ChannelBase
	}
	return true
}
