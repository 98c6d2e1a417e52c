package catalog

import "strings"

// excludedKeywords marks catalog entries that are not general text models.
var excludedKeywords = []string{
	"exp",
	"image-generation",
	"tts",
	"speech",
	"audio",
	"vision",
	"embedding",
	"code",
	"translate",
	"search",
}

// Filter reduces a raw listing to the text-generation identifiers of the
// 2.0 and 2.5 generations. The "models/" prefix is stripped. Input order is
// preserved.
func Filter(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimPrefix(strings.TrimSpace(id), "models/")
		if !strings.Contains(id, "gemini-2.0") && !strings.Contains(id, "gemini-2.5") {
			continue
		}
		if excluded(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func excluded(id string) bool {
	lower := strings.ToLower(id)
	for _, kw := range excludedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
