package google

import (
	"google.golang.org/genai"

	"github.com/spetersoncode/newsbrief/backend"
)

var harmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// safetySettings maps a posture to request settings. The default posture
// sends none so the API applies its own thresholds.
func safetySettings(s backend.Safety) []*genai.SafetySetting {
	if s != backend.SafetyPermissive {
		return nil
	}
	out := make([]*genai.SafetySetting, len(harmCategories))
	for i, cat := range harmCategories {
		out[i] = &genai.SafetySetting{
			Category:  cat,
			Threshold: genai.HarmBlockThresholdBlockNone,
		}
	}
	return out
}
