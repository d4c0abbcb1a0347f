package analyses

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/llm"
)

type stubGen struct {
	replies map[string]string
	errs    map[string]error
	prompts []string
}

func (g *stubGen) Generate(_ context.Context, model, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if err, ok := g.errs[model]; ok {
		return "", err
	}
	return g.replies[model], nil
}

const validReply = `{"matchScore":72,"strengths":["Go"],"gaps":["Kubernetes"],"improvements":["Quantify impact"],` +
	`"optimizedSection":"Backend engineer...","beforeAfterComparison":"Before: x After: y","keywordMatchScore":64}`

func TestScoreUsesFirstParsableReply(t *testing.T) {
	g := &stubGen{replies: map[string]string{
		"fast":   "I think this resume is great!",
		"strong": "```json\n" + validReply + "\n```",
	}}
	s := &Scorer{LLM: &llm.Ranked{Models: []llm.ModelRef{{Name: "fast", Gen: g}, {Name: "strong", Gen: g}}}}

	res, err := s.Score(context.Background(), "resume body", "Seeking a backend engineer")
	require.NoError(t, err)
	assert.Equal(t, 72, res.MatchScore)
	assert.Equal(t, []string{"Go"}, res.Strengths)
	assert.Equal(t, 64, res.KeywordMatchScore)

	require.Len(t, g.prompts, 2)
	assert.Contains(t, g.prompts[0], "resume body")
	assert.Contains(t, g.prompts[0], "Seeking a backend engineer")
}

func TestScoreExhaustedIsUpstreamError(t *testing.T) {
	g := &stubGen{errs: map[string]error{"only": errors.New("boom")}}
	s := &Scorer{LLM: &llm.Ranked{Models: []llm.ModelRef{{Name: "only", Gen: g}}}}

	_, err := s.Score(context.Background(), "text", "jd")
	var upstream *llm.UpstreamAnalysisError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "only", upstream.Model)
}

func TestParseResultClampsAndRounds(t *testing.T) {
	res, err := ParseResult(`{"matchScore":104.6,"strengths":[],"gaps":[],"improvements":[],` +
		`"optimizedSection":"","beforeAfterComparison":"","keywordMatchScore":-3}`)
	require.NoError(t, err)
	assert.Equal(t, 100, res.MatchScore)
	assert.Equal(t, 0, res.KeywordMatchScore)

	res, err = ParseResult(`{"matchScore":71.5,"strengths":[],"gaps":[],"improvements":[],` +
		`"optimizedSection":"","beforeAfterComparison":"","keywordMatchScore":12.4}`)
	require.NoError(t, err)
	assert.Equal(t, 72, res.MatchScore)
	assert.Equal(t, 12, res.KeywordMatchScore)
}

func TestParseResultClampsHugeScores(t *testing.T) {
	res, err := ParseResult(`{"matchScore":1e300,"strengths":[],"gaps":[],"improvements":[],` +
		`"optimizedSection":"","beforeAfterComparison":"","keywordMatchScore":-1e300}`)
	require.NoError(t, err)
	assert.Equal(t, 100, res.MatchScore)
	assert.Equal(t, 0, res.KeywordMatchScore)
}

func TestParseResultRejectsIncompleteReplies(t *testing.T) {
	cases := map[string]string{
		"not json":      "Sure! Here is your analysis.",
		"missing gaps":  `{"matchScore":1,"strengths":[],"improvements":[],"optimizedSection":"","beforeAfterComparison":"","keywordMatchScore":1}`,
		"null list":     `{"matchScore":1,"strengths":null,"gaps":[],"improvements":[],"optimizedSection":"","beforeAfterComparison":"","keywordMatchScore":1}`,
		"string score":  `{"matchScore":"high","strengths":[],"gaps":[],"improvements":[],"optimizedSection":"","beforeAfterComparison":"","keywordMatchScore":1}`,
		"missing score": `{"strengths":[],"gaps":[],"improvements":[],"optimizedSection":"","beforeAfterComparison":"","keywordMatchScore":1}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResult(reply)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
