package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJudgmentValid(t *testing.T) {
	j, err := ParseJudgment(`{"happiness":0.7,"summaryStatement":"good mix","directResponse":"I approve","preferredPackage":"access: option3"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.7, j.Happiness)
	assert.Equal(t, "good mix", j.SummaryStatement)
	assert.Equal(t, "I approve", j.DirectResponse)
	assert.Equal(t, "access: option3", j.PreferredPackage)
}

func TestParseJudgmentFencedOutput(t *testing.T) {
	raw := "```json\n{\"happiness\":0.2,\"summaryStatement\":\"too cheap\",\"directResponse\":\"no\"}\n```"
	j, err := ParseJudgment(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.2, j.Happiness)
	assert.Empty(t, j.PreferredPackage)
}

func TestParseJudgmentRejectsOutOfRangeHappiness(t *testing.T) {
	_, err := ParseJudgment(`{"happiness":1.4,"summaryStatement":"x","directResponse":"y"}`)
	assert.Error(t, err)
}

func TestParseJudgmentRejectsMissingFields(t *testing.T) {
	_, err := ParseJudgment(`{"happiness":0.5}`)
	assert.Error(t, err)
}

func TestParseJudgmentRejectsEmptyOutput(t *testing.T) {
	for _, raw := range []string{"", "   ", "no json here"} {
		_, err := ParseJudgment(raw)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestParseJudgmentRejectsMalformedJSON(t *testing.T) {
	_, err := ParseJudgment(`{"happiness":0.5,`)
	assert.Error(t, err)
}
