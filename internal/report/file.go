package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/policy"
)

// FileSink appends a plain-text rendering of each report to a local file.
type FileSink struct {
	Path string
}

func (f *FileSink) Name() string { return "file" }

func (f *FileSink) Deliver(_ context.Context, r *Report) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Bean Council Report - %s\n", r.PlayerName))
	if r.SessionID != "" {
		sb.WriteString(fmt.Sprintf("Session: %s\n", r.SessionID))
	}
	sb.WriteString(fmt.Sprintf("Submitted: %s\n", r.SubmittedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString("Final selections:\n")
	for _, area := range policy.AreaOrder {
		if opt, ok := r.FinalSelections[area]; ok {
			sb.WriteString(fmt.Sprintf("- %s: %s (cost %d)\n", area.Title(), opt, opt.Cost()))
		}
	}
	sb.WriteString(fmt.Sprintf("Total cost: %d\n\n", r.FinalSelections.TotalCost()))

	if len(r.AgentHappiness) > 0 {
		sb.WriteString("Agent happiness:\n")
		for _, p := range agent.All {
			if h, ok := r.AgentHappiness[p]; ok {
				sb.WriteString(fmt.Sprintf("- %s: %.2f\n", p.DisplayName(), h))
			}
		}
		sb.WriteString("\n")
	}

	if len(r.ReflectionAnswers) > 0 {
		sb.WriteString("Reflection:\n")
		keys := make([]string, 0, len(r.ReflectionAnswers))
		for k := range r.ReflectionAnswers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", k, r.ReflectionAnswers[k]))
		}
		sb.WriteString("\n")
	}
	if r.OptionalFeedback != "" {
		sb.WriteString(fmt.Sprintf("Feedback: %s\n\n", r.OptionalFeedback))
	}

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
