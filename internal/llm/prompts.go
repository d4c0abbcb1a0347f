package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/analysis.txt
	analysisTemplate string
	//go:embed prompts/chat.txt
	chatTemplate string
)

// Turn is one message of a mentor conversation.
type Turn struct {
	Role    string
	Content string
}

// AnalysisPrompt embeds the resume text and job description in the scoring prompt.
func AnalysisPrompt(resumeText, jobDescription string) string {
	r := strings.NewReplacer(
		"{{RESUME_TEXT}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
	)
	return r.Replace(analysisTemplate)
}

// ChatPrompt renders the conversation as a transcript, one "User:" or "AI:"
// line per turn, inside the mentor prompt.
func ChatPrompt(history []Turn) string {
	lines := make([]string, 0, len(history))
	for _, t := range history {
		speaker := "AI"
		if t.Role == "user" {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+t.Content)
	}
	return strings.ReplaceAll(chatTemplate, "{{HISTORY}}", strings.Join(lines, "\n"))
}
