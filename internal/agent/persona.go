package agent

import "sync"

type PersonaID string

const (
	PersonaState       PersonaID = "state"
	PersonaCitizen     PersonaID = "citizen"
	PersonaHumanRights PersonaID = "human_rights"
)

// All lists the three counterparties in canonical order.
var All = []PersonaID{PersonaState, PersonaCitizen, PersonaHumanRights}

func Valid(id PersonaID) bool {
	for _, p := range All {
		if p == id {
			return true
		}
	}
	return false
}

func (p PersonaID) DisplayName() string {
	switch p {
	case PersonaState:
		return "State Minister"
	case PersonaCitizen:
		return "Citizen Representative"
	case PersonaHumanRights:
		return "Human Rights Advocate"
	}
	return string(p)
}

// PreferredPackage is a write-once value: the only legal transition is
// unset -> set. An agent decides its ideal package on its first oracle
// response and then advocates for it; a moving target would be unfair to
// the player, so later writes are ignored rather than erroring.
type PreferredPackage struct {
	value string
	set   bool
}

// Set records the package. It reports whether the write took effect; empty
// values and repeat writes are ignored.
func (p *PreferredPackage) Set(v string) bool {
	if p.set || v == "" {
		return false
	}
	p.value = v
	p.set = true
	return true
}

func (p PreferredPackage) Get() (string, bool) {
	return p.value, p.set
}

type persona struct {
	preferred PreferredPackage
	happiness float64
}

// Store holds the fixed stance and latest happiness per persona. It is
// mutated only by the deliberation engine.
type Store struct {
	mu       sync.RWMutex
	personas map[PersonaID]*persona
}

// NewStore seeds every persona at the neutral happiness default.
func NewStore(neutral float64) *Store {
	s := &Store{personas: make(map[PersonaID]*persona, len(All))}
	for _, id := range All {
		s.personas[id] = &persona{happiness: neutral}
	}
	return s
}

// SetPreferred applies the write-once rule and reports whether the value
// was recorded.
func (s *Store) SetPreferred(id PersonaID, pkg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.personas[id]
	if p == nil {
		return false
	}
	return p.preferred.Set(pkg)
}

func (s *Store) Preferred(id PersonaID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.personas[id]
	if p == nil {
		return "", false
	}
	return p.preferred.Get()
}

func (s *Store) SetHappiness(id PersonaID, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.personas[id]; p != nil {
		p.happiness = h
	}
}

func (s *Store) Happiness(id PersonaID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.personas[id]; p != nil {
		return p.happiness
	}
	return 0
}

// Scores snapshots every persona's current happiness.
func (s *Store) Scores() map[PersonaID]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[PersonaID]float64, len(s.personas))
	for id, p := range s.personas {
		out[id] = p.happiness
	}
	return out
}
