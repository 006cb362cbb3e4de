package types

// Verdict is the adjudicator's structured judgement of a prediction against
// the session's two pictures. MatchedLabel is one of the session's labels,
// or empty when no salient feature distinguished the pair ("none").
type Verdict struct {
	MatchedLabel string `json:"matched_label,omitempty"`
	Confidence   int    `json:"confidence"`
	Reasoning    string `json:"reasoning"`
	AnalysisA    string `json:"analysis_a"`
	AnalysisB    string `json:"analysis_b"`
}
