package analyses

import "time"

// Result is the structured verdict for one resume against one job description.
type Result struct {
	MatchScore            int      `json:"matchScore"`
	Strengths             []string `json:"strengths"`
	Gaps                  []string `json:"gaps"`
	Improvements          []string `json:"improvements"`
	OptimizedSection      string   `json:"optimizedSection"`
	BeforeAfterComparison string   `json:"beforeAfterComparison"`
	KeywordMatchScore     int      `json:"keywordMatchScore"`
}

// Record is a persisted analysis owned by a user. Records are never updated.
type Record struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	JobDescription string    `json:"jobDescription"`
	Analysis       Result    `json:"analysis"`
	CreatedAt      time.Time `json:"createdAt"`
}
