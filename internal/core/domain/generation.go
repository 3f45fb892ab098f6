package domain

import "strings"

// HarmCategory names a content-filter category of the generation provider.
type HarmCategory string

// Content-filter categories.
const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// AllHarmCategories returns every category the assistant configures.
func AllHarmCategories() []HarmCategory {
	return []HarmCategory{
		HarmCategoryHarassment,
		HarmCategoryHateSpeech,
		HarmCategorySexuallyExplicit,
		HarmCategoryDangerousContent,
	}
}

// HarmThreshold is the blocking policy for a HarmCategory.
type HarmThreshold string

// Blocking policies, from most to least permissive.
const (
	HarmThresholdBlockNone           HarmThreshold = "BLOCK_NONE"
	HarmThresholdBlockOnlyHigh       HarmThreshold = "BLOCK_ONLY_HIGH"
	HarmThresholdBlockMediumAndAbove HarmThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	HarmThresholdBlockLowAndAbove    HarmThreshold = "BLOCK_LOW_AND_ABOVE"
)

// IsValid returns true if the threshold is recognised.
func (t HarmThreshold) IsValid() bool {
	switch t {
	case HarmThresholdBlockNone, HarmThresholdBlockOnlyHigh,
		HarmThresholdBlockMediumAndAbove, HarmThresholdBlockLowAndAbove:
		return true
	default:
		return false
	}
}

// SafetySetting sets the blocking policy for one category.
type SafetySetting struct {
	Category  HarmCategory
	Threshold HarmThreshold
}

// PermissiveSafety returns settings that relax every category to BLOCK_NONE.
func PermissiveSafety() []SafetySetting {
	categories := AllHarmCategories()
	settings := make([]SafetySetting, len(categories))
	for i, c := range categories {
		settings[i] = SafetySetting{Category: c, Threshold: HarmThresholdBlockNone}
	}
	return settings
}

// SamplingConfig bounds a generation request.
type SamplingConfig struct {
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// MaxOutputTokens caps the length of the answer.
	MaxOutputTokens int

	// Safety configures the provider's content filters.
	Safety []SafetySetting
}

// DefaultSamplingConfig returns the sampling used for spoken answers:
// short, moderately creative and never silently refused.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Temperature:     0.7,
		MaxOutputTokens: 150,
		Safety:          PermissiveSafety(),
	}
}

// Candidate is one raw completion returned by the provider.
type Candidate struct {
	// Parts holds the text parts of the candidate content, in order.
	Parts []string

	// FinishReason is the provider's reason for stopping (e.g. "STOP", "SAFETY").
	FinishReason string
}

// Generation is the structured response of a generation collaborator.
// A provider that refuses content signals it with empty Text rather than
// an error; the raw candidates stay available for fallback extraction.
type Generation struct {
	// Text is the provider's best text, empty when unavailable.
	Text string

	// Candidates holds the raw candidate structures.
	Candidates []Candidate

	// BlockReason is set when the whole prompt was blocked.
	BlockReason string
}

// JoinedText concatenates the parts of a candidate.
func (c Candidate) JoinedText() string {
	return strings.Join(c.Parts, "")
}
