package types

// AnalysisReport is the structured outcome of a resume review.
type AnalysisReport struct {
	OverallAssessment OverallAssessment `json:"overallAssessment"`
	Suggestions       []Suggestion      `json:"suggestions"`
}

type OverallAssessment struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// Suggestion targets one resume section with a concrete recommendation.
type Suggestion struct {
	Section        string `json:"section"`
	Recommendation string `json:"recommendation"`
}

// Normalize replaces nil list fields with empty slices.
func (a *AnalysisReport) Normalize() {
	if a.OverallAssessment.Strengths == nil {
		a.OverallAssessment.Strengths = []string{}
	}
	if a.OverallAssessment.Weaknesses == nil {
		a.OverallAssessment.Weaknesses = []string{}
	}
	if a.Suggestions == nil {
		a.Suggestions = []Suggestion{}
	}
}

// JobMatchReport scores a resume against a job description. Suggested
// improvements target specific sections, same shape as the analysis
// report's suggestions.
type JobMatchReport struct {
	MatchScore            int          `json:"matchScore"`
	Summary               string       `json:"summary"`
	MissingKeywords       []string     `json:"missingKeywords"`
	SuggestedImprovements []Suggestion `json:"suggestedImprovements"`
}

// Normalize replaces nil list fields with empty slices.
func (j *JobMatchReport) Normalize() {
	if j.MissingKeywords == nil {
		j.MissingKeywords = []string{}
	}
	if j.SuggestedImprovements == nil {
		j.SuggestedImprovements = []Suggestion{}
	}
}

// ChangeRecord describes one modification applied during enhancement.
type ChangeRecord struct {
	Section     string `json:"section"`
	Field       string `json:"field"`
	OldValue    string `json:"oldValue"`
	NewValue    string `json:"newValue"`
	ChangeType  string `json:"changeType"`
	Description string `json:"description"`
}

// Change types reported by the enhancement summary parser.
const (
	ChangeTypeEnhanced  = "enhanced"
	ChangeTypeAdded     = "added"
	ChangeTypeOptimized = "optimized"
	ChangeTypeImproved  = "improved"
)

// EnhanceResult pairs the rewritten resume with the parsed change list.
type EnhanceResult struct {
	CV      ResumeRecord   `json:"cv"`
	Changes []ChangeRecord `json:"changes"`
}
