package engine

import (
	"strings"

	"github.com/policylab/beancouncil/internal/agent"
)

// ParseMention resolves the addressing convention for chat messages: an
// @-token picks the one persona the message is directed at. It is kept
// apart from the state machine so the heuristic can be swapped without
// touching transition logic.
func ParseMention(text string) (agent.PersonaID, bool) {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "@state"):
		return agent.PersonaState, true
	case strings.Contains(t, "@citizen"):
		return agent.PersonaCitizen, true
	case strings.Contains(t, "@rights"), strings.Contains(t, "@human"):
		return agent.PersonaHumanRights, true
	}
	return "", false
}
