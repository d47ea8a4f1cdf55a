package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/policy"
)

// MailSink posts the report as an HTML email through a Resend-compatible
// API. Delivery is best effort; the game never waits on it.
type MailSink struct {
	APIKey  string
	BaseURL string
	From    string
	To      string
	http    *http.Client
}

func NewMailSink(apiKey, from, to string) *MailSink {
	return &MailSink{
		APIKey:  apiKey,
		BaseURL: "https://api.resend.com",
		From:    from,
		To:      to,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *MailSink) Name() string { return "mail" }

func (m *MailSink) Deliver(ctx context.Context, r *Report) error {
	payload := map[string]any{
		"from":    m.From,
		"to":      []string{m.To},
		"subject": fmt.Sprintf("Bean Council report: %s", r.PlayerName),
		"html":    renderHTML(r),
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, "POST", strings.TrimRight(m.BaseURL, "/")+"/emails", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("mail api status %d", resp.StatusCode)
	}
	return nil
}

// renderHTML builds the mail body. Player-supplied strings are escaped;
// only our own markup is emitted raw.
func renderHTML(r *Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<h1>Bean Council Report</h1><p><strong>Player:</strong> %s</p>", html.EscapeString(r.PlayerName))
	if r.SessionID != "" {
		fmt.Fprintf(&sb, "<p><strong>Session:</strong> %s</p>", r.SessionID)
	}
	sb.WriteString("<h2>Final selections</h2><ul>")
	for _, area := range policy.AreaOrder {
		if opt, ok := r.FinalSelections[area]; ok {
			fmt.Fprintf(&sb, "<li><strong>%s:</strong> %s (cost %d)</li>", area.Title(), opt, opt.Cost())
		}
	}
	sb.WriteString("</ul>")
	if len(r.AgentHappiness) > 0 {
		sb.WriteString("<h2>Agent happiness</h2><ul>")
		for _, p := range agent.All {
			if h, ok := r.AgentHappiness[p]; ok {
				fmt.Fprintf(&sb, "<li><strong>%s:</strong> %.2f</li>", p.DisplayName(), h)
			}
		}
		sb.WriteString("</ul>")
	}
	if len(r.ReflectionAnswers) > 0 {
		sb.WriteString("<h2>Reflection</h2>")
		for q, a := range r.ReflectionAnswers {
			fmt.Fprintf(&sb, "<h3>%s</h3>", html.EscapeString(q))
			if a == "" {
				sb.WriteString("<p><em>No answer provided.</em></p>")
			} else {
				fmt.Fprintf(&sb, "<p>%s</p>", html.EscapeString(a))
			}
		}
	}
	if r.OptionalFeedback != "" {
		fmt.Fprintf(&sb, "<h2>Feedback</h2><p>%s</p>", html.EscapeString(r.OptionalFeedback))
	}
	return sb.String()
}
