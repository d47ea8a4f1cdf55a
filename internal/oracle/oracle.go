package oracle

import (
	"context"
	"errors"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/policy"
)

// ErrUnavailable is the single normalized outcome for every oracle failure:
// transport errors, timeouts, schema mismatches and empty outputs. Callers
// treat it as "no judgment, no state change".
var ErrUnavailable = errors.New("no judgment available")

// Judgment is the structured output of the reasoning oracle for one
// persona at one point in the negotiation.
type Judgment struct {
	Happiness        float64 `json:"happiness"`
	SummaryStatement string  `json:"summaryStatement"`
	DirectResponse   string  `json:"directResponse"`
	// PreferredPackage is present only on a persona's first response.
	PreferredPackage string `json:"preferredPackage,omitempty"`
}

// Request carries everything a persona needs to judge the current state.
type Request struct {
	Persona    agent.PersonaID
	Selections policy.SelectionSet
	// Preferred is the persona's fixed package, empty until decided.
	Preferred string
	// FocusArea names the policy area the user is currently viewing.
	FocusArea string
	// Message is the optional directed user message.
	Message string
}

type Oracle interface {
	Judge(ctx context.Context, req Request) (*Judgment, error)
}
