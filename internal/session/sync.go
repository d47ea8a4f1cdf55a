package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/policylab/beancouncil/internal/policy"
)

const idAttempts = 5

// Synchronizer mediates every mutation of the shared session document.
// Each field in the document has exactly one legitimate writer: a
// participant for its own record, the host for status transitions. That
// ownership rule is what makes concurrent edits commutative without
// merge logic.
type Synchronizer struct {
	store      Store
	maxPlayers int
}

func NewSynchronizer(store Store, maxPlayers int) *Synchronizer {
	if maxPlayers <= 0 {
		maxPlayers = 2
	}
	return &Synchronizer{store: store, maxPlayers: maxPlayers}
}

// CreateSession builds a lobby document with the host as first
// participant. The session id is a human-typeable six digit code generated
// with a bounded collision retry against the store; it is a casual pairing
// code, not a credential.
func (sy *Synchronizer) CreateSession(ctx context.Context, hostUID, hostName string) (*GameSession, error) {
	for attempt := 0; attempt < idAttempts; attempt++ {
		sess := &GameSession{
			SessionID: fmt.Sprintf("session_%06d", 100000+rand.Intn(900000)),
			HostUID:   hostUID,
			Participants: []Participant{{
				UID:         hostUID,
				DisplayName: hostName,
				IsHost:      true,
			}},
			CreatedAt:  time.Now().UTC(),
			MaxPlayers: sy.maxPlayers,
			Status:     StatusLobby,
		}
		err := sy.store.Create(ctx, sess)
		if err == ErrSessionExists {
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info().Str("sessionId", sess.SessionID).Str("host", hostUID).Msg("session created")
		return sess, nil
	}
	return nil, fmt.Errorf("could not generate a unique session id after %d attempts", idAttempts)
}

// Join adds a participant to the lobby. Re-joining with the same uid is
// idempotent: the roster is left untouched and the call succeeds.
func (sy *Synchronizer) Join(ctx context.Context, id, uid, name string) (*GameSession, error) {
	return sy.store.Update(ctx, id, func(s *GameSession) error {
		if s.participant(uid) != nil {
			return nil
		}
		if len(s.Participants) >= s.MaxPlayers {
			return ErrSessionFull
		}
		s.Participants = append(s.Participants, Participant{
			UID:         uid,
			DisplayName: name,
		})
		return nil
	})
}

// Start moves lobby -> phase1_selection. Only the host may trigger it and
// the roster must hold at least two players.
func (sy *Synchronizer) Start(ctx context.Context, id, uid string) (*GameSession, error) {
	return sy.store.Update(ctx, id, func(s *GameSession) error {
		if s.HostUID != uid {
			return ErrNoHost
		}
		if s.Status != StatusLobby {
			return ErrInvalidPhase
		}
		if len(s.Participants) < 2 {
			return ErrNotEnoughPlayers
		}
		s.Status = StatusSelection
		return nil
	})
}

// Submit records the caller's selections on its own participant record.
// When every participant has submitted, only the host's own submit flips
// the phase, so at most one writer ever performs the transition even if
// both submits race.
func (sy *Synchronizer) Submit(ctx context.Context, id, uid string, sel policy.SelectionSet) (*GameSession, error) {
	return sy.store.Update(ctx, id, func(s *GameSession) error {
		p := s.participant(uid)
		if p == nil {
			return ErrNotParticipant
		}
		p.LatestSelections = sel.Clone()
		p.HasSubmitted = true
		if s.AllSubmitted() && uid == s.HostUID && s.Status == StatusSelection {
			s.Status = StatusDeliberation
		}
		return nil
	})
}

// Advance is the host-only forward transition: phase2_deliberation ->
// phase3_reflection -> complete. During phase1_selection it doubles as the
// host's re-check: if every participant has submitted but the flip was
// missed (the guest submitted last), the host can still move the session
// into deliberation.
func (sy *Synchronizer) Advance(ctx context.Context, id, uid string) (*GameSession, error) {
	return sy.store.Update(ctx, id, func(s *GameSession) error {
		if s.HostUID != uid {
			return ErrNoHost
		}
		if s.Status == StatusSelection {
			if !s.AllSubmitted() {
				return ErrInvalidPhase
			}
			s.Status = StatusDeliberation
			return nil
		}
		next, ok := s.Status.Next()
		if !ok {
			return ErrInvalidPhase
		}
		s.Status = next
		return nil
	})
}

// AppendChat adds a chat message from a participant to the session log.
func (sy *Synchronizer) AppendChat(ctx context.Context, id, uid, text string) (*GameSession, error) {
	return sy.store.Update(ctx, id, func(s *GameSession) error {
		p := s.participant(uid)
		if p == nil {
			return ErrNotParticipant
		}
		s.ChatMessages = append(s.ChatMessages, ChatMessage{
			UID:         uid,
			DisplayName: p.DisplayName,
			Message:     text,
			Timestamp:   time.Now().UTC(),
		})
		return nil
	})
}

func (sy *Synchronizer) Get(ctx context.Context, id string) (*GameSession, error) {
	return sy.store.Get(ctx, id)
}

// Watch subscribes to every committed change of one session document.
func (sy *Synchronizer) Watch(id string, fn func(*GameSession)) func() {
	return sy.store.Watch(id, fn)
}
