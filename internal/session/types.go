package session

import (
	"time"

	"github.com/policylab/beancouncil/internal/policy"
)

// Status is the two-party game state machine. Transitions only move
// forward; a session document is never deleted.
type Status string

const (
	StatusLobby        Status = "lobby"
	StatusSelection    Status = "phase1_selection"
	StatusDeliberation Status = "phase2_deliberation"
	StatusReflection   Status = "phase3_reflection"
	StatusComplete     Status = "complete"
)

// Next returns the successor phase for host-driven advancement past the
// selection phase.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusDeliberation:
		return StatusReflection, true
	case StatusReflection:
		return StatusComplete, true
	}
	return s, false
}

// Participant is one player's record inside the session document. Each
// record is written only through operations keyed by its own uid, so the
// two participants never contend for the same field.
type Participant struct {
	UID              string              `json:"uid"`
	DisplayName      string              `json:"displayName"`
	IsHost           bool                `json:"isHost"`
	LatestSelections policy.SelectionSet `json:"latestSelections,omitempty"`
	HasSubmitted     bool                `json:"hasSubmitted"`
}

type ChatMessage struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"displayName"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// GameSession is the single authoritative document both ends observe.
type GameSession struct {
	SessionID    string        `json:"sessionId"`
	HostUID      string        `json:"hostUid"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
	MaxPlayers   int           `json:"maxPlayers"`
	Status       Status        `json:"status"`
	ChatMessages []ChatMessage `json:"chatMessages,omitempty"`
}

func (s *GameSession) Clone() *GameSession {
	out := *s
	out.Participants = make([]Participant, len(s.Participants))
	for i, p := range s.Participants {
		p.LatestSelections = p.LatestSelections.Clone()
		out.Participants[i] = p
	}
	out.ChatMessages = append([]ChatMessage(nil), s.ChatMessages...)
	return &out
}

func (s *GameSession) participant(uid string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].UID == uid {
			return &s.Participants[i]
		}
	}
	return nil
}

// AllSubmitted reports whether every participant has submitted selections.
func (s *GameSession) AllSubmitted() bool {
	if len(s.Participants) == 0 {
		return false
	}
	for _, p := range s.Participants {
		if !p.HasSubmitted {
			return false
		}
	}
	return true
}

// ConsensusReached is the two-party analogue of agent happiness: it is
// true when every participant holds structurally identical selections.
func (s *GameSession) ConsensusReached() bool {
	if len(s.Participants) < 2 {
		return false
	}
	first := s.Participants[0].LatestSelections
	if first == nil {
		return false
	}
	for _, p := range s.Participants[1:] {
		if p.LatestSelections == nil || !policy.Equal(first, p.LatestSelections) {
			return false
		}
	}
	return true
}
