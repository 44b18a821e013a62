package models

import "time"

// ModerationCategory is a label from the classifier's closed vocabulary.
type ModerationCategory string

const (
	CategoryToxicity       ModerationCategory = "toxicity"
	CategorySevereToxicity ModerationCategory = "severe_toxicity"
	CategoryObscene        ModerationCategory = "obscene"
	CategoryThreat         ModerationCategory = "threat"
	CategoryInsult         ModerationCategory = "insult"
	CategoryIdentityHate   ModerationCategory = "identity_hate"
	CategorySexualContent  ModerationCategory = "sexual_content"
	CategoryViolence       ModerationCategory = "violence"
	CategorySpam           ModerationCategory = "spam"
	CategoryHateSpeech     ModerationCategory = "hate_speech"
	CategoryHarassment     ModerationCategory = "harassment"
)

// ModerationCategories lists every label the classifier may return, in schema order.
var ModerationCategories = []ModerationCategory{
	CategoryToxicity, CategorySevereToxicity, CategoryObscene, CategoryThreat,
	CategoryInsult, CategoryIdentityHate, CategorySexualContent, CategoryViolence,
	CategorySpam, CategoryHateSpeech, CategoryHarassment,
}

// ModerationVerdict is the raw classifier output, before enrichment with
// model name and timestamp.
type ModerationVerdict struct {
	IsFlagged  bool                 `json:"isFlagged"`
	Score      float64              `json:"score"`
	Categories []ModerationCategory `json:"categories"`
	Reason     *string              `json:"reason,omitempty"`
	Confidence float64              `json:"confidence"`
}

// HasCategory reports whether the verdict includes the given category.
func (v *ModerationVerdict) HasCategory(c ModerationCategory) bool {
	for _, got := range v.Categories {
		if got == c {
			return true
		}
	}

	return false
}

// ModerationResult is the snapshot attached to an article after a successful
// classification. The previous snapshot is overwritten, not versioned.
type ModerationResult struct {
	Flagged     bool                 `json:"flagged"`
	Score       float64              `json:"score"`
	Categories  []ModerationCategory `json:"categories"`
	Reason      *string              `json:"reason,omitempty"`
	Confidence  float64              `json:"confidence"`
	Model       string               `json:"model"`
	ModeratedAt time.Time            `json:"moderated_at"`
}
