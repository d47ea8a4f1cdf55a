package report

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/policy"
)

// Report is the final-state export: selections, happiness scores and the
// player's free-text reflection answers. It is produced once, after a game
// completes, and delivered fire-and-forget.
type Report struct {
	SessionID         string                        `json:"sessionId,omitempty"`
	PlayerName        string                        `json:"playerName"`
	FinalSelections   policy.SelectionSet           `json:"finalSelections"`
	AgentHappiness    map[agent.PersonaID]float64   `json:"agentHappiness,omitempty"`
	ReflectionAnswers map[string]string             `json:"reflectionAnswers,omitempty"`
	OptionalFeedback  string                        `json:"optionalFeedback,omitempty"`
	SubmittedAt       time.Time                     `json:"submittedAt"`
}

// Sink delivers one report somewhere. Failures are logged and swallowed;
// nothing downstream may block or roll back game completion.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r *Report) error
}

// Dispatcher fans a report out to every configured sink in the background.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
}

func NewDispatcher(timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{sinks: sinks, timeout: timeout}
}

// Submit delivers asynchronously and returns immediately. Sink failures
// are logged, never retried synchronously and never surfaced to the game.
func (d *Dispatcher) Submit(r *Report) {
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now().UTC()
	}
	for _, s := range d.sinks {
		go func(s Sink) {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := s.Deliver(ctx, r); err != nil {
				log.Error().Err(err).Str("sink", s.Name()).Msg("report delivery failed")
				return
			}
			log.Info().Str("sink", s.Name()).Str("player", r.PlayerName).Msg("report delivered")
		}(s)
	}
}
