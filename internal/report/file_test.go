package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/policy"
)

func sampleReport() *Report {
	return &Report{
		SessionID:  "session_123456",
		PlayerName: "Alice",
		FinalSelections: policy.SelectionSet{
			policy.AreaAccess:   policy.Option3,
			policy.AreaLanguage: policy.Option1,
		},
		AgentHappiness: map[agent.PersonaID]float64{
			agent.PersonaState:   0.7,
			agent.PersonaCitizen: 0.5,
		},
		ReflectionAnswers: map[string]string{
			"q1": "it was hard to balance the budget",
		},
		OptionalFeedback: "great exercise",
		SubmittedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "out.txt")
	sink := &FileSink{Path: path}

	require.NoError(t, sink.Deliver(context.Background(), sampleReport()))
	require.NoError(t, sink.Deliver(context.Background(), sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Bean Council Report - Alice")
	assert.Contains(t, text, "Session: session_123456")
	assert.Contains(t, text, "Access to Education: option3 (cost 3)")
	assert.Contains(t, text, "Total cost: 4")
	assert.Contains(t, text, "it was hard to balance the budget")
	assert.Contains(t, text, "Feedback: great exercise")

	// Second delivery appended rather than truncated.
	assert.Equal(t, 2, strings.Count(text, "Bean Council Report - Alice"))
}
