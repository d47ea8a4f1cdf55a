package oracle

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/ai"
	"github.com/policylab/beancouncil/internal/policy"
)

// ProviderOracle turns a judgment request into a prompt, delegates to a
// model transport and validates the reply.
type ProviderOracle struct {
	provider ai.Provider
	model    string
}

func NewProviderOracle(p ai.Provider, model string) *ProviderOracle {
	return &ProviderOracle{provider: p, model: model}
}

func (o *ProviderOracle) Judge(ctx context.Context, req Request) (*Judgment, error) {
	prompt := agent.BuildPrompt(
		req.Persona,
		policy.FormatForPrompt(req.Selections),
		req.Preferred,
		req.FocusArea,
		req.Message,
	)
	raw, err := o.provider.CompleteJSON(ctx, o.model, agent.SystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	j, err := ParseJudgment(raw)
	if err != nil {
		log.Debug().Err(err).Str("persona", string(req.Persona)).Msg("oracle reply rejected")
		return nil, err
	}
	return j, nil
}
