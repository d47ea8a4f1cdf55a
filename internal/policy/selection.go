package policy

import (
	"fmt"
	"strings"
)

// SelectionSet maps a policy area to the chosen option. It may be partial
// while the player is still editing.
type SelectionSet map[AreaID]OptionID

func (s SelectionSet) Clone() SelectionSet {
	if s == nil {
		return nil
	}
	out := make(SelectionSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports structural equality of two selection sets. It is the
// two-party consensus check: both humans hold identical choices.
func Equal(a, b SelectionSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// TotalCost sums the cost of every selected option.
func (s SelectionSet) TotalCost() int {
	total := 0
	for _, opt := range s {
		total += opt.Cost()
	}
	return total
}

// Evaluation is the validator's full output for one selection state.
type Evaluation struct {
	TotalCost        int  `json:"totalCost"`
	RemainingBudget  int  `json:"remainingBudget"`
	BudgetExceeded   bool `json:"budgetExceeded"`
	AllAreasSelected bool `json:"allAreasSelected"`
	UniformCost      bool `json:"uniformCost"`
	CanSubmit        bool `json:"canSubmit"`
}

// Evaluate applies the budget and cost-mix rules to a selection set. It is
// pure and never errors: an invalid state is simply unsubmittable.
func Evaluate(s SelectionSet, budget int) Evaluation {
	ev := Evaluation{TotalCost: s.TotalCost()}
	ev.RemainingBudget = budget - ev.TotalCost
	ev.BudgetExceeded = ev.TotalCost > budget
	ev.AllAreasSelected = len(s) == len(AreaOrder)
	ev.UniformCost = uniformCost(s)
	ev.CanSubmit = ev.AllAreasSelected && !ev.UniformCost && !ev.BudgetExceeded
	return ev
}

// uniformCost is true when two or more selections exist and every selected
// option carries the same cost. A lone selection is never uniform.
func uniformCost(s SelectionSet) bool {
	if len(s) <= 1 {
		return false
	}
	first := -1
	for _, opt := range s {
		c := opt.Cost()
		if first == -1 {
			first = c
			continue
		}
		if c != first {
			return false
		}
	}
	return true
}

// Apply returns a copy of the set with one assignment replaced or added.
func Apply(s SelectionSet, area AreaID, opt OptionID) SelectionSet {
	out := s.Clone()
	if out == nil {
		out = SelectionSet{}
	}
	out[area] = opt
	return out
}

// Selectable reports whether choosing opt for area, replacing any prior
// choice there, would stay within budget. This drives the "disable if over
// budget" rule in the UI.
func Selectable(s SelectionSet, area AreaID, opt OptionID, budget int) bool {
	return Apply(s, area, opt).TotalCost() <= budget
}

// FormatForPrompt serializes the selections in canonical area order for the
// oracle prompt. Unselected areas are reported as such so the oracle sees
// the full shape of the package.
func FormatForPrompt(s SelectionSet) string {
	var sb strings.Builder
	for _, id := range AreaOrder {
		opt, ok := s[id]
		if !ok {
			fmt.Fprintf(&sb, "- %s: not selected yet\n", id.Title())
			continue
		}
		title := string(opt)
		if a, found := AreaByID(id); found {
			for _, o := range a.Options {
				if o.ID == opt {
					title = o.Title
				}
			}
		}
		fmt.Fprintf(&sb, "- %s: %s (%s, cost %d)\n", id.Title(), title, opt, opt.Cost())
	}
	return sb.String()
}

// CacheKey is a canonical one-line encoding of the set, stable across map
// iteration order. It identifies the negotiation state for memoization.
func (s SelectionSet) CacheKey() string {
	parts := make([]string, 0, len(AreaOrder))
	for _, id := range AreaOrder {
		if opt, ok := s[id]; ok {
			parts = append(parts, string(id)+"="+string(opt))
		}
	}
	return strings.Join(parts, ",")
}
